package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicreport-be/models"
)

func TestPolicy(t *testing.T) {
	var policy Policy
	reporter := citizen()
	issue := &models.Issue{ID: primitive.NewObjectID(), ReportedBy: reporter.AccountID}

	anonymous := models.Identity{}

	assert.False(t, policy.CanReport(anonymous))
	assert.True(t, policy.CanReport(citizen()))

	assert.False(t, policy.CanUpvote(anonymous))
	assert.True(t, policy.CanUpvote(citizen()))
	assert.True(t, policy.CanUpvote(admin()))

	assert.False(t, policy.CanComment(anonymous))
	assert.True(t, policy.CanComment(citizen()))

	assert.False(t, policy.CanSetStatus(anonymous))
	assert.False(t, policy.CanSetStatus(citizen()))
	assert.True(t, policy.CanSetStatus(admin()))

	assert.False(t, policy.CanDelete(anonymous, issue))
	assert.False(t, policy.CanDelete(citizen(), issue))
	assert.True(t, policy.CanDelete(reporter, issue))
	assert.True(t, policy.CanDelete(admin(), issue))
}
