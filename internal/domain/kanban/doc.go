// Package kanban holds the board rules: which column moves an actor may make,
// which tasks an actor can see, and how the board is filtered and laid out.
package kanban
