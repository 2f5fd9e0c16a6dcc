package database

const (
	ActionUpload      = "upload"
	ActionProcess     = "process"
	ActionDownload    = "download"
	ActionDownloadPDF = "download-pdf"
)

// timestampLayout is ISO-8601 with microseconds
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

type LogEntry struct {
	ID        int64  `db:"id" json:"id"`
	Timestamp string `db:"timestamp" json:"timestamp"`
	Action    string `db:"action" json:"action"`
	Filename  string `db:"filename" json:"filename"`
	IPAddress string `db:"ip_address" json:"ip_address"`
}
