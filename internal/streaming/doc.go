/*
Package streaming implements the video byte-delivery contract.

# Range semantics

Requests without a Range header receive the full file with status 200.
Requests with "bytes=<start>-<end?>" receive exactly that span with status
206, Content-Range, Accept-Ranges and Content-Length headers; end defaults to
the last byte and is clamped to the file size. A range whose start lies past
the end of the file, or past its own end, is rejected with 416 and
"Content-Range: bytes * /<size>" rather than trusted verbatim. Malformed Range
headers are ignored and the full file is served.

# Client disconnects

Copies are chunked, and each chunk checks the request context, so a client
that disconnects mid-stream releases the open file handle promptly.
ErrClientGone distinguishes that case from real I/O failures.
*/
package streaming
