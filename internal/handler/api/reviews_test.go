package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

// reviewFixture builds a catalog with one title and returns its reviews path.
func reviewFixture(t *testing.T, a *testAPI, adminToken string) string {
	t.Helper()
	seedCatalog(t, a, adminToken)
	title := createTitle(t, a, adminToken, "Reviewed Work", 2000, []string{"drama"})
	return fmt.Sprintf("/titles/%d/reviews/", title.ID)
}

func postReview(t *testing.T, a *testAPI, path, token string, score int64) model.Review {
	t.Helper()

	rec := a.do(t, http.MethodPost, path, token, map[string]any{
		"text":  "worth a look",
		"score": score,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var review model.Review
	decodeData(t, rec, &review)
	return review
}

func TestCreateReview(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, userToken := a.createUser(t, "reader42", model.RoleUser)
	path := reviewFixture(t, a, adminToken)

	review := postReview(t, a, path, userToken, 8)
	assert.Equal(t, "reader42", review.Author)
	assert.Equal(t, int64(8), review.Score)
	assert.False(t, review.PubDate.IsZero())
}

func TestCreateReviewRequiresAuth(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	path := reviewFixture(t, a, adminToken)

	rec := a.do(t, http.MethodPost, path, "", map[string]any{"text": "x", "score": 5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReviewScoreBounds(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, userToken := a.createUser(t, "reader42", model.RoleUser)
	path := reviewFixture(t, a, adminToken)

	for _, score := range []int64{0, 11, -1} {
		rec := a.do(t, http.MethodPost, path, userToken, map[string]any{
			"text":  "out of range",
			"score": score,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code,
			"score %d: %s", score, rec.Body.String())
		assert.Contains(t, decodeError(t, rec).Details, "score")
	}
}

func TestCreateReviewOncePerAuthor(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, userToken := a.createUser(t, "reader42", model.RoleUser)
	_, otherToken := a.createUser(t, "other", model.RoleUser)
	path := reviewFixture(t, a, adminToken)

	postReview(t, a, path, userToken, 8)

	rec := a.do(t, http.MethodPost, path, userToken, map[string]any{"text": "again", "score": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// A different author may still review.
	postReview(t, a, path, otherToken, 4)
}

func TestRatingAggregation(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, firstToken := a.createUser(t, "first", model.RoleUser)
	_, secondToken := a.createUser(t, "second", model.RoleUser)

	seedCatalog(t, a, adminToken)
	title := createTitle(t, a, adminToken, "Scored Work", 2000, nil)
	titlePath := fmt.Sprintf("/titles/%d", title.ID)
	reviewsPath := titlePath + "/reviews/"

	postReview(t, a, reviewsPath, firstToken, 10)
	postReview(t, a, reviewsPath, secondToken, 5)

	rec := a.do(t, http.MethodGet, titlePath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Title
	decodeData(t, rec, &got)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.5, *got.Rating, 0.001)
}

func TestUpdateReviewPermissions(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, authorToken := a.createUser(t, "author", model.RoleUser)
	_, otherToken := a.createUser(t, "other", model.RoleUser)
	_, modToken := a.createUser(t, "mod", model.RoleModerator)

	path := reviewFixture(t, a, adminToken)
	review := postReview(t, a, path, authorToken, 8)
	reviewPath := fmt.Sprintf("%s%d", path, review.ID)

	// A stranger may read but not edit.
	rec := a.do(t, http.MethodGet, reviewPath, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPatch, reviewPath, otherToken, map[string]any{"score": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPatch, reviewPath, authorToken, map[string]any{"score": 6})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated model.Review
	decodeData(t, rec, &updated)
	assert.Equal(t, int64(6), updated.Score)
	assert.Equal(t, "worth a look", updated.Text)
	assert.Equal(t, review.PubDate.Unix(), updated.PubDate.Unix())

	// Moderators may delete other people's reviews.
	rec = a.do(t, http.MethodDelete, reviewPath, modToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReviewNotFoundUnderWrongTitle(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, userToken := a.createUser(t, "reader42", model.RoleUser)

	seedCatalog(t, a, adminToken)
	first := createTitle(t, a, adminToken, "First", 2000, nil)
	second := createTitle(t, a, adminToken, "Second", 2001, nil)

	review := postReview(t, a, fmt.Sprintf("/titles/%d/reviews/", first.ID), userToken, 8)

	rec := a.do(t, http.MethodGet, fmt.Sprintf("/titles/%d/reviews/%d", second.ID, review.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, authorToken := a.createUser(t, "author", model.RoleUser)
	_, otherToken := a.createUser(t, "other", model.RoleUser)

	path := reviewFixture(t, a, adminToken)
	review := postReview(t, a, path, authorToken, 8)
	commentsPath := fmt.Sprintf("%s%d/comments/", path, review.ID)

	rec := a.do(t, http.MethodPost, commentsPath, "", map[string]string{"text": "anon"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, commentsPath, otherToken, map[string]string{"text": "agreed"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var comment model.Comment
	decodeData(t, rec, &comment)
	assert.Equal(t, "other", comment.Author)

	rec = a.do(t, http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []model.Comment
	decodeData(t, rec, &comments)
	require.Len(t, comments, 1)

	commentPath := fmt.Sprintf("%s%d", commentsPath, comment.ID)

	// Only the comment author, a moderator, or an admin may edit.
	rec = a.do(t, http.MethodPatch, commentPath, authorToken, map[string]string{"text": "nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPatch, commentPath, otherToken, map[string]string{"text": "edited"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated model.Comment
	decodeData(t, rec, &updated)
	assert.Equal(t, "edited", updated.Text)

	rec = a.do(t, http.MethodDelete, commentPath, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, commentPath, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReviewCascadesToTitleRating(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.createUser(t, "boss", model.RoleAdmin)
	_, userToken := a.createUser(t, "reader42", model.RoleUser)

	seedCatalog(t, a, adminToken)
	title := createTitle(t, a, adminToken, "Fleeting", 2000, nil)
	titlePath := fmt.Sprintf("/titles/%d", title.ID)
	reviewsPath := titlePath + "/reviews/"

	review := postReview(t, a, reviewsPath, userToken, 9)

	rec := a.do(t, http.MethodDelete, fmt.Sprintf("%s%d", reviewsPath, review.ID), userToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, titlePath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Title
	decodeData(t, rec, &got)
	assert.Nil(t, got.Rating)
}
