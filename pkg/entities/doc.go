// Package entities defines the record types stored by larder. Each type has
// one Schema and one constructor; constructing through the schema is the only
// way to obtain a validated value.
package entities
