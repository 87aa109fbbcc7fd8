// Package diag defines archcheck's diagnostic model: numeric codes,
// source references and a collecting bag.
package diag
