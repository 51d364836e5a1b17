package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"joinsync/internal/models"
)

func TestFindAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	submitted := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("decodes and defaults status", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "telegramId", Value: "u1"},
				{Key: "username", Value: "alice"},
				{Key: "xLink", Value: "x1"},
				{Key: "status", Value: "approved"},
				{Key: "submittedAt", Value: submitted},
			},
			bson.D{
				{Key: "telegramId", Value: "u2"},
				{Key: "xLink", Value: "x2"},
				{Key: "submittedAt", Value: submitted},
			},
		))

		all, err := New(mt.Coll).FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "alice", all[0].Username)
		assert.Equal(mt, models.StatusApproved, all[0].Status)
		assert.True(mt, submitted.Equal(all[0].SubmittedAt))
		assert.Equal(mt, models.StatusPending, all[1].Status)
		assert.Equal(mt, "", all[1].Username)
	})

	mt.Run("returns incomplete documents as stored", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "telegramId", Value: "u3"}, {Key: "status", Value: "pending"}},
			bson.D{{Key: "telegramId", Value: "u4"}, {Key: "xLink", Value: "x4"}, {Key: "status", Value: "archived"}},
		))

		all, err := New(mt.Coll).FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "", all[0].XLink)
		assert.Equal(mt, models.Status("archived"), all[1].Status)
	})
}

func TestConditionalUpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "telegramId", Value: "u1"},
			{Key: "xLink", Value: "x1"},
			{Key: "status", Value: "approved"},
		}}))

		got, err := New(mt.Coll).ConditionalUpdateStatus(context.Background(), "u1", models.StatusPending, models.StatusApproved)
		require.NoError(mt, err)
		require.NotNil(mt, got)
		assert.Equal(mt, models.StatusApproved, got.Status)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		query := started.Command.Lookup("query").Document()
		assert.Equal(mt, "u1", query.Lookup("telegramId").StringValue())
		assert.Equal(mt, "pending", query.Lookup("status").StringValue())
	})

	mt.Run("no match returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		got, err := New(mt.Coll).ConditionalUpdateStatus(context.Background(), "u1", models.StatusPending, models.StatusApproved)
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("command error propagates", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := New(mt.Coll).ConditionalUpdateStatus(context.Background(), "u1", models.StatusPending, models.StatusApproved)
		assert.ErrorContains(mt, err, "boom")
	})

	mt.Run("invalid target status", func(mt *mtest.T) {
		_, err := New(mt.Coll).ConditionalUpdateStatus(context.Background(), "u1", models.StatusPending, "archived")
		assert.Error(mt, err)
	})
}

func TestDatabaseName(t *testing.T) {
	cases := []struct {
		name       string
		uri        string
		configured string
		want       string
	}{
		{"from uri path", "mongodb://user:pw@db.example.net:27017/yapcircle?retryWrites=true", "", "yapcircle"},
		{"configured wins", "mongodb://db.example.net:27017/yapcircle", "override", "override"},
		{"no path", "mongodb://localhost:27017", "", "test"},
		{"empty path", "mongodb://localhost:27017/?replicaSet=rs0", "", "test"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DatabaseName(tc.uri, tc.configured)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := DatabaseName("postgres://localhost/db", "")
	assert.ErrorContains(t, err, "parse mongo uri")
}
