package export

import "fmt"

// Format identifies an export document format. Values match the inbound
// `action` query discriminator, so the handler can parse it straight off the
// request.
type Format string

const (
	FormatCSV   Format = "CSV"
	FormatExcel Format = "EXCEL"
	FormatPDF   Format = "PDF"
)

// ParseFormat maps an action value to a Format. Anything unrecognized
// (including "filter" and absent actions) reports false: the request is a
// plain listing, not an export.
func ParseFormat(action string) (Format, bool) {
	switch Format(action) {
	case FormatCSV, FormatExcel, FormatPDF:
		return Format(action), true
	default:
		return "", false
	}
}

// ContentType returns the response content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the file extension, dot included.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatExcel:
		return ".xlsx"
	case FormatPDF:
		return ".pdf"
	default:
		return ""
	}
}

// FileName builds the download filename; the form slug keeps exports from
// different forms distinguishable on the admin's disk.
func FileName(slug string, f Format) string {
	return fmt.Sprintf("%s-submissions%s", slug, f.Ext())
}
