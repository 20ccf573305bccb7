package model

const (
	AppServiceName = "submission_exporter"
	NamespaceName  = "streamforms"
)

var versions = []string{
	"25.08",
	"25.06",
	"25.04",
}

var (
	CurrentVersion = versions[0]
)
