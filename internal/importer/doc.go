// Package importer validates Excel workbook uploads and forwards them to the
// statistics API. Only department heads and superusers may import.
package importer
