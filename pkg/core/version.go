package core

// Status is the review state of a document version.
type Status string

const (
	StatusPending          Status = "pending"
	StatusApproved         Status = "approved"
	StatusChangesRequested Status = "changes_requested"
)

// DocumentVersion is one uploaded revision of a reviewable document.
// Versions form a linear lineage with a monotonically increasing number;
// exactly one version per lineage is current.
type DocumentVersion struct {
	ID            string
	VersionNumber int
	FileURL       string
	IsCurrent     bool
	Status        Status
	RevisionsUsed int
	RevisionLimit int
}

// ReadOnly reports whether annotation content on this version is frozen:
// superseded versions and approved versions take no further edits.
func (v DocumentVersion) ReadOnly() bool {
	return !v.IsCurrent || v.Status == StatusApproved
}

// CanUploadNewVersion reports whether the revision budget allows another
// upload. The budget itself is enforced by the upload path; this is a
// read-side gate for the UI.
func (v DocumentVersion) CanUploadNewVersion() bool {
	return v.RevisionsUsed < v.RevisionLimit
}

// Review is the full payload for one review lineage: the loaded version
// plus the version history, ascending by version number.
type Review struct {
	ID       string
	Version  DocumentVersion
	Versions []DocumentVersion
}
