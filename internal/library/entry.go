package library

import "time"

// Entry holds metadata for one dataset file in the library.
type Entry struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Rows    int       `json:"rows"`
	Columns int       `json:"columns"`
	AddedAt time.Time `json:"added_at"`
}
