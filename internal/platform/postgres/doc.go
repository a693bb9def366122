// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. It also embeds the schema migrations applied by
// the server's migrate command.
package postgres
