package services

import "civicreport-be/models"

// Policy holds the engagement rules: who may upvote, who may change status,
// who may delete.
type Policy struct{}

// CanReport requires any authenticated caller.
func (Policy) CanReport(actor models.Identity) bool {
	return !actor.Zero()
}

// CanUpvote requires any authenticated caller; no role restriction.
func (Policy) CanUpvote(actor models.Identity) bool {
	return !actor.Zero()
}

// CanComment requires any authenticated caller.
func (Policy) CanComment(actor models.Identity) bool {
	return !actor.Zero()
}

// CanSetStatus is admin-only.
func (Policy) CanSetStatus(actor models.Identity) bool {
	return !actor.Zero() && actor.IsAdmin()
}

// CanDelete allows an admin or the reporting account.
func (Policy) CanDelete(actor models.Identity, issue *models.Issue) bool {
	if actor.Zero() {
		return false
	}
	return actor.IsAdmin() || actor.AccountID == issue.ReportedBy
}
