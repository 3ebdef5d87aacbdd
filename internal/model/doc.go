package model

// Package model defines domain data structures used across the app: queue
// items, the item status state machine, quality/audio format ladders, and
// metadata probe results. Structures are designed for direct binding in the
// UI and explicit state transitions.
