package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newItemService(repo *mockRepo) *ItemService {
	logger := zerolog.New(io.Discard)
	svc := NewItemService(repo, &logger)
	svc.now = func() time.Time { return testNow }
	return svc
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 1, Name: "owner"}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		requestID := int64(7)

		repo.On("GetUserByID", ctx, owner.ID).Return(owner, nil)
		repo.On("GetRequestByID", ctx, requestID).Return(&models.ItemRequest{ID: requestID}, nil)
		repo.On("CreateItem", ctx, mock.MatchedBy(func(i *models.Item) bool {
			return i.OwnerID == owner.ID && i.Available && *i.RequestID == requestID
		})).Return(nil)

		item, err := svc.CreateItem(ctx, owner.ID, models.ItemInput{
			Name: "Drill", Description: "Cordless", Available: boolPtr(true), RequestID: &requestID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Drill", item.Name)
		repo.AssertExpectations(t)
	})

	invalid := []models.ItemInput{
		{Name: "", Description: "d", Available: boolPtr(true)},
		{Name: "n", Description: "  ", Available: boolPtr(true)},
		{Name: "n", Description: "d"},
	}
	for _, input := range invalid {
		svc := newItemService(new(mockRepo))
		_, err := svc.CreateItem(ctx, owner.ID, input)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	t.Run("UnknownRequest", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		requestID := int64(99)
		repo.On("GetUserByID", ctx, owner.ID).Return(owner, nil)
		repo.On("GetRequestByID", ctx, requestID).Return(nil, domain.NotFound("Request with id=99 not found"))

		_, err := svc.CreateItem(ctx, owner.ID, models.ItemInput{
			Name: "Drill", Description: "d", Available: boolPtr(true), RequestID: &requestID,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 1}
	stranger := &models.User{ID: 2}

	t.Run("PartialPatch", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUserByID", ctx, owner.ID).Return(owner, nil)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, Name: "Drill", Description: "d", Available: true, OwnerID: 1}, nil)
		repo.On("UpdateItem", ctx, mock.Anything).Return(nil)

		item, err := svc.UpdateItem(ctx, owner.ID, 10, models.ItemPatch{Available: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, item.Available)
		assert.Equal(t, "Drill", item.Name)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUserByID", ctx, stranger.ID).Return(stranger, nil)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, OwnerID: 1}, nil)

		_, err := svc.UpdateItem(ctx, stranger.ID, 10, models.ItemPatch{Name: strPtr("Mine")})
		assert.ErrorIs(t, err, domain.ErrForbidden)

		err = svc.DeleteItem(ctx, stranger.ID, 10)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
	})

	t.Run("BlankName", func(t *testing.T) {
		svc := newItemService(new(mockRepo))
		_, err := svc.UpdateItem(ctx, owner.ID, 10, models.ItemPatch{Name: strPtr(" ")})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestItemService_GetItem(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 10, Name: "Drill", OwnerID: 1}
	comments := []*models.Comment{{ID: 1, Text: "ok", AuthorName: "booker"}}
	last := &models.BookingShort{ID: 5, BookerID: 2}

	t.Run("Owner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(item, nil)
		repo.On("GetCommentsByItem", ctx, item.ID).Return(comments, nil)
		repo.On("GetLastBooking", ctx, item.ID, testNow).Return(last, nil)
		repo.On("GetNextBooking", ctx, item.ID, testNow).Return(nil, nil)

		details, err := svc.GetItem(ctx, 1, item.ID)
		require.NoError(t, err)
		assert.Equal(t, last, details.LastBooking)
		assert.Nil(t, details.NextBooking)
		assert.Len(t, details.Comments, 1)
	})

	t.Run("Other", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(item, nil)
		repo.On("GetCommentsByItem", ctx, item.ID).Return(comments, nil)

		details, err := svc.GetItem(ctx, 2, item.ID)
		require.NoError(t, err)
		assert.Nil(t, details.LastBooking)
		assert.Nil(t, details.NextBooking)
		repo.AssertNotCalled(t, "GetLastBooking", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestItemService_SearchItems(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := newItemService(repo)
	page := models.Page{Size: 10}

	items, err := svc.SearchItems(ctx, "   ", page)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	repo.AssertNotCalled(t, "SearchItems", mock.Anything, mock.Anything, mock.Anything)

	repo.On("SearchItems", ctx, "drill", page).Return([]*models.Item{{ID: 1}}, nil)
	items, err = svc.SearchItems(ctx, "drill", page)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// text reaches the store as typed, folding happens there
	repo.On("SearchItems", ctx, "ДРЕЛЬ", page).Return([]*models.Item{{ID: 2, Name: "Дрель"}}, nil)
	items, err = svc.SearchItems(ctx, "ДРЕЛЬ", page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Дрель", items[0].Name)
}

func TestItemService_AddComment(t *testing.T) {
	ctx := context.Background()
	author := &models.User{ID: 2, Name: "booker"}
	item := &models.Item{ID: 10, OwnerID: 1}

	t.Run("BlankText", func(t *testing.T) {
		svc := newItemService(new(mockRepo))
		_, err := svc.AddComment(ctx, author.ID, item.ID, models.CommentInput{Text: " "})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("NotABooker", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUserByID", ctx, author.ID).Return(author, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(item, nil)
		repo.On("HasFinishedBooking", ctx, author.ID, item.ID, testNow).Return(false, nil)

		_, err := svc.AddComment(ctx, author.ID, item.ID, models.CommentInput{Text: "great"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUserByID", ctx, author.ID).Return(author, nil)
		repo.On("GetItemByID", ctx, item.ID).Return(item, nil)
		repo.On("HasFinishedBooking", ctx, author.ID, item.ID, testNow).Return(true, nil)
		repo.On("CreateComment", ctx, mock.Anything).Return(nil)

		comment, err := svc.AddComment(ctx, author.ID, item.ID, models.CommentInput{Text: "great"})
		require.NoError(t, err)
		assert.Equal(t, "booker", comment.AuthorName)
		assert.Equal(t, testNow, comment.CreatedAt)
	})
}
