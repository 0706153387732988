package consts

type SubmissionStatus string

const SubmissionStatusPending SubmissionStatus = "Pending"
const SubmissionStatusGenerating SubmissionStatus = "Generating"
const SubmissionStatusGenerated SubmissionStatus = "Generated"

type WebsiteStatus string

const (
	WebsiteStatusReady           WebsiteStatus = "Ready"
	WebsiteStatusPendingApproval WebsiteStatus = "PendingApproval"
	WebsiteStatusPublished       WebsiteStatus = "Published"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

type OutboxStatus int

const (
	NotProcessed OutboxStatus = iota
	Processing
	Processed
	InError
)

// ArtifactFiles is the fixed set of files rendered per website; nothing
// outside this list is ever stored or served.
var ArtifactFiles = []string{"index.html", "styles.css", "script.js"}

func IsArtifactFile(name string) bool {
	for _, f := range ArtifactFiles {
		if f == name {
			return true
		}
	}
	return false
}
