package main

// Bundled database/sql drivers. The dialect maps to the driver name; these
// imports register the drivers the CLI ships with.
import (
	_ "github.com/jackc/pgx/v5/stdlib" // postgres ("pgx")
	_ "modernc.org/sqlite"             // sqlite ("sqlite")
)
