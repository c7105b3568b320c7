// Package database provides SQLite-based storage of scan history.
// Each directory-mode run can persist its report so later runs of the
// same root can be compared against it.
package database
