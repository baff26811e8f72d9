package startup

import (
	"net/http"
	"os"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, info.Version)
	}
	if info.GoVersion == "" {
		t.Error("Expected a Go version")
	}
	if info.OS == "" || info.Arch == "" {
		t.Errorf("Expected OS and Arch to be set, got %+v", info)
	}
}

func TestGetEnvBool(t *testing.T) {
	const key = "STARTUP_TEST_BOOL"
	defer os.Unsetenv(key)

	tests := []struct {
		value        string
		defaultValue bool
		expected     bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"false", true, false},
		{"1", false, true},
		{"0", true, false},
		{"garbage", true, true},
	}

	for _, tt := range tests {
		if tt.value == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, tt.value)
		}
		if got := getEnvBool(key, tt.defaultValue); got != tt.expected {
			t.Errorf("getEnvBool(%q, %v): expected %v, got %v", tt.value, tt.defaultValue, tt.expected, got)
		}
	}
}

func TestGetEnv(t *testing.T) {
	const key = "STARTUP_TEST_STRING"
	defer os.Unsetenv(key)

	if got := getEnv(key, "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
	os.Setenv(key, "set")
	if got := getEnv(key, "fallback"); got != "set" {
		t.Errorf("Expected set, got %s", got)
	}
}

func TestRouteGroup(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/projects", "projects"},
		{"/projects/{slug}/videos", "projects"},
		{"/health", "health"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := routeGroup(tt.path); got != tt.expected {
			t.Errorf("routeGroup(%q): expected %q, got %q", tt.path, tt.expected, got)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	noop := func(w http.ResponseWriter, r *http.Request) {}
	router.HandleFunc("/health", noop).Methods("GET")
	router.HandleFunc("/projects", noop).Methods("GET", "POST")
	router.HandleFunc("/projects/{slug}", noop).Methods("DELETE")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}

	// One entry per method.
	if len(routes) != 4 {
		t.Fatalf("Expected 4 route entries, got %d", len(routes))
	}

	found := false
	for _, route := range routes {
		if route.Method == "DELETE" && route.Path == "/projects/{slug}" {
			found = true
		}
	}
	if !found {
		t.Error("Expected DELETE /projects/{slug} in the route list")
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := t.TempDir()

	// Creates a missing directory.
	missing := dir + "/sub/nested"
	if err := ensureDirectory(missing, "test"); err != nil {
		t.Fatalf("ensureDirectory failed: %v", err)
	}
	if info, err := os.Stat(missing); err != nil || !info.IsDir() {
		t.Error("Expected nested directory to be created")
	}

	// Accepts an existing directory.
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Errorf("Expected existing directory to pass, got %v", err)
	}

	// Rejects a file in the way.
	file := dir + "/file"
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("Expected error for non-directory path")
	}
}
