package ddl

import gddl "healthetl/internal/ddl"

// MapType returns the SQLite column type for a logical kind. Dates are ISO
// text so they sort and compare lexically.
var MapType = gddl.TypeMap{Int: "INTEGER", Float: "REAL", Date: "TEXT", Text: "TEXT"}.Lookup
