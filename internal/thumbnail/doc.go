// Package thumbnail generates poster-frame JPEG thumbnails for video files.
//
// A frame is extracted with ffmpeg and downscaled in-process. Thumbnails are
// derived data: once a thumbnail file exists it is never regenerated.
package thumbnail
