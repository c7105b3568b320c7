// Package model defines the data structures shared across guardscan.
// It contains the per-header protection classification, the guard tag
// index used for collision detection, and the scan report consumed by
// the report writers and the history database.
package model
