// Package datasource is the data plane: live connections to the databases
// that saved connections describe. It introspects tables through
// information_schema and performs row CRUD keyed on the table's primary
// key. Identifiers are always quoted; values always travel as bind
// parameters. Callers are responsible for permission checks.
package datasource
