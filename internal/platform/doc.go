package platform

// Package platform wraps OS-level helpers: directory management, file
// manager integration, and ffprobe-based media file inspection.
