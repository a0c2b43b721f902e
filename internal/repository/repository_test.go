package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = uuid.NewString()
	}
	return out
}

func TestInsertSwipe_IsImmutable(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(setupTestDB(t))
	u := ids(2)

	outcome, err := repo.InsertSwipe(ctx, &db.Swipe{SwiperID: u[0], SwipedID: u[1], Type: db.SwipeLike})
	require.NoError(t, err)
	assert.Equal(t, repository.Inserted, outcome)

	// a second decision does not overwrite the first
	outcome, err = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: u[0], SwipedID: u[1], Type: db.SwipePass})
	require.NoError(t, err)
	assert.Equal(t, repository.AlreadyExisted, outcome)

	s, err := repo.GetSwipe(ctx, u[0], u[1])
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, db.SwipeLike, s.Type)
}

func TestHasLiked_IsDirectional(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(setupTestDB(t))
	u := ids(3)

	_, _ = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: u[0], SwipedID: u[1], Type: db.SwipeLike})
	_, _ = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: u[2], SwipedID: u[1], Type: db.SwipePass})

	liked, err := repo.HasLiked(ctx, u[0], u[1])
	require.NoError(t, err)
	assert.True(t, liked)

	liked, _ = repo.HasLiked(ctx, u[1], u[0])
	assert.False(t, liked)

	liked, _ = repo.HasLiked(ctx, u[2], u[1])
	assert.False(t, liked, "a pass is not a like")
}

func TestGetLikersAndPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)
	recipient := uuid.NewString()
	likers := ids(5)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, l := range likers {
		s := db.Swipe{SwiperID: l, SwipedID: recipient, Type: db.SwipeLike, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, dbase.Create(&s).Error)
	}
	// recipient passed likers[0] → excluded
	_, _ = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: recipient, SwipedID: likers[0], Type: db.SwipePass})

	page1, next, err := repo.GetLikers(ctx, recipient, nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, next)
	assert.Equal(t, likers[4], page1[0].SwiperID)
	assert.Equal(t, likers[2], page1[2].SwiperID)

	page2, next, err := repo.GetLikers(ctx, recipient, next, 3)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, next)
	assert.Equal(t, likers[1], page2[0].SwiperID)

	count, err := repo.CountLikers(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestGetNewLikers(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(setupTestDB(t))
	recipient := uuid.NewString()
	u := ids(2)

	// u[0] liked recipient, and recipient liked back → mutual
	_, _ = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: u[0], SwipedID: recipient, Type: db.SwipeLike})
	_, _ = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: recipient, SwipedID: u[0], Type: db.SwipeLike})

	// u[1] liked recipient, but not mutual
	_, _ = repo.InsertSwipe(ctx, &db.Swipe{SwiperID: u[1], SwipedID: recipient, Type: db.SwipeLike})

	swipes, _, err := repo.GetNewLikers(ctx, recipient, nil, 10)
	require.NoError(t, err)
	require.Len(t, swipes, 1)
	assert.Equal(t, u[1], swipes[0].SwiperID)
}

func TestGetLikers_BadToken(t *testing.T) {
	repo := repository.NewSwipeRepository(setupTestDB(t))
	bad := "%%%"
	_, _, err := repo.GetLikers(context.Background(), uuid.NewString(), &bad, 10)
	assert.Error(t, err)
}

func TestInsertMatchIfAbsent_UniquePair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))
	u1, u2 := "a-user", "b-user"

	first := &db.Match{ID: uuid.NewString(), User1ID: u1, User2ID: u2, Status: db.MatchActive}
	outcome, err := repo.InsertMatchIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, repository.Inserted, outcome)

	second := &db.Match{ID: uuid.NewString(), User1ID: u1, User2ID: u2, Status: db.MatchActive}
	outcome, err = repo.InsertMatchIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, repository.AlreadyExisted, outcome)

	n, err := repo.CountMatches(ctx, u1, u2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindMatch(ctx, u1, u2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := repo.FindMatch(ctx, u2, u1)
	require.NoError(t, err)
	assert.Nil(t, missing, "lookups are by canonical order only")
}

func TestConversation_OnePerMatch(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	m := &db.Match{ID: uuid.NewString(), User1ID: "a", User2ID: "b", Status: db.MatchActive}
	_, err := repo.InsertMatchIfAbsent(ctx, m)
	require.NoError(t, err)

	c1 := &db.Conversation{ID: uuid.NewString(), MatchID: m.ID, User1ID: "a", User2ID: "b"}
	outcome, err := repo.InsertConversation(ctx, c1)
	require.NoError(t, err)
	assert.Equal(t, repository.Inserted, outcome)

	c2 := &db.Conversation{ID: uuid.NewString(), MatchID: m.ID, User1ID: "a", User2ID: "b"}
	outcome, err = repo.InsertConversation(ctx, c2)
	require.NoError(t, err)
	assert.Equal(t, repository.AlreadyExisted, outcome)

	require.NoError(t, repo.AttachConversation(ctx, m.ID, c1.ID))
	// second attach does not overwrite
	require.NoError(t, repo.AttachConversation(ctx, m.ID, c2.ID))

	got, err := repo.FindMatchByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ConversationID)
	assert.Equal(t, c1.ID, *got.ConversationID)

	conv, err := repo.FindConversationByMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, conv.ID)
}

func TestListMatchesForUser(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)
	now := time.Now().UTC().Truncate(time.Millisecond)

	rows := []db.Match{
		{ID: "m1", User1ID: "a", User2ID: "b", Status: db.MatchActive, CreatedAt: now},
		{ID: "m2", User1ID: "0", User2ID: "a", Status: db.MatchActive, CreatedAt: now.Add(time.Second)},
		{ID: "m3", User1ID: "a", User2ID: "c", Status: db.MatchBlocked, CreatedAt: now},
		{ID: "m4", User1ID: "b", User2ID: "c", Status: db.MatchActive, CreatedAt: now},
	}
	require.NoError(t, dbase.Create(&rows).Error)

	got, err := repo.ListMatchesForUser(ctx, "a", db.MatchActive, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "m1", got[1].ID)
}

func TestUpdateStatus_OnlyFromExpected(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRequestRepository(setupTestDB(t))

	req := &db.MatchRequest{ID: uuid.NewString(), RequesterID: "a", MatchedUserID: "b", Status: db.RequestPending}
	require.NoError(t, repo.Create(ctx, req))

	msg := "see you there"
	updated, err := repo.UpdateStatus(ctx, req.ID, db.RequestPending, db.RequestConfirmed, &msg, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, updated)

	// already confirmed: a second transition does nothing
	updated, err = repo.UpdateStatus(ctx, req.ID, db.RequestPending, db.RequestRejected, nil, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, updated)

	got, err := repo.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RequestConfirmed, got.Status)
	require.NotNil(t, got.ResponseMessage)
	assert.Equal(t, msg, *got.ResponseMessage)
	assert.NotNil(t, got.RespondedAt)

	pending, err := repo.ListPendingFor(ctx, "b", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProfileRepository_ChartsAndAnswers(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(setupTestDB(t))
	userID := uuid.NewString()

	chart, err := repo.GetChart(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, chart)

	d := 123.4
	in := compatibility.Chart{Positions: map[compatibility.Body]compatibility.Position{
		compatibility.Sun: {Sign: compatibility.Leo, Degree: &d},
	}}
	require.NoError(t, repo.SaveChart(ctx, userID, in))

	chart, err = repo.GetChart(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, chart)
	deg, ok := chart.Degree(compatibility.Sun)
	assert.True(t, ok)
	assert.InDelta(t, 123.4, deg, 1e-9)

	require.NoError(t, repo.SaveAnswers(ctx, userID, compatibility.Answers{"kids": "yes"}))
	require.NoError(t, repo.SaveAnswers(ctx, userID, compatibility.Answers{"kids": "no"}))
	answers, err := repo.GetAnswers(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, compatibility.Answers{"kids": "no"}, answers)

	p, err := repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, p)
}
