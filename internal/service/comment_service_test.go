package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/internal/testutil"
	"news-cms/pkg/apperr"
)

func newCommentService(e *env) *CommentService {
	s := NewCommentService(e.repos, config.CommentConfig{MaxLength: 1000})
	s.SetClock(e.clock.Now)
	return s
}

func guest(name, email string) model.Author {
	return model.Author{GuestName: name, GuestEmail: email}
}

func TestAddComment_Validation(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	tests := []struct {
		name    string
		author  model.Author
		content string
		field   string
	}{
		{"empty", guest("Ann", "ann@example.com"), "   ", "content"},
		{"too long", guest("Ann", "ann@example.com"), strings.Repeat("é", 1001), "content"},
		{"only markup", guest("Ann", "ann@example.com"), "<script></script>", "content"},
		{"missing guest name", guest("", "ann@example.com"), "hello", "guestName"},
		{"bad guest email", guest("Ann", "not-an-email"), "hello", "guestEmail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddComment(ctx, news.ID, tt.author, tt.content, nil)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Contains(t, ae.Fields, tt.field)
		})
	}
}

func TestAddComment_LengthLimitCountsCharacters(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	c, err := s.AddComment(ctx, news.ID, guest("Ann", "ann@example.com"), "  "+strings.Repeat("é", 1000)+"  ", nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, len([]rune(c.Content)))
}

func TestAddComment_PlainTextStoredVerbatim(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	text := `It's 3 < 5 & "ok"`
	c, err := s.AddComment(ctx, news.ID, guest("O'Brien & Co", "ob@example.com"), text, nil)
	require.NoError(t, err)
	assert.Equal(t, text, c.Content)
	assert.Equal(t, "O'Brien & Co", c.GuestName)

	var stored model.Comment
	require.NoError(t, e.db.First(&stored, c.ID).Error)
	assert.Equal(t, text, stored.Content)
	assert.Equal(t, "O'Brien & Co", stored.GuestName)

	// 重复编辑不会再次转义
	uid := author.UserID
	mine, err := s.AddComment(ctx, news.ID, model.Author{UserID: &uid}, text, nil)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		mine, err = s.EditComment(ctx, mine.ID, author, mine.Content)
		require.NoError(t, err)
	}
	assert.Equal(t, text, mine.Content)
}

func TestAddComment_LengthCheckedOnStoredText(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	c, err := s.AddComment(ctx, news.ID, guest("Ann", "ann@example.com"), strings.Repeat("&", 1000), nil)
	require.NoError(t, err)
	var stored model.Comment
	require.NoError(t, e.db.First(&stored, c.ID).Error)
	assert.Equal(t, 1000, len([]rune(stored.Content)))

	_, err = s.AddComment(ctx, news.ID, guest("Ann", "ann@example.com"), strings.Repeat("&", 1001), nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// 标签被去除后按剩余文本计数
	c, err = s.AddComment(ctx, news.ID, guest("Ann", "ann@example.com"), "<i>"+strings.Repeat("a", 1000)+"</i>", nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 1000), c.Content)

	_, err = s.AddComment(ctx, news.ID, guest(strings.Repeat("&", 101), "ann@example.com"), "hi", nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAddComment_UserReferenceWins(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	uid := author.UserID
	c, err := s.AddComment(ctx, news.ID, model.Author{UserID: &uid, GuestName: "X", GuestEmail: "bad"}, "hi", nil)
	require.NoError(t, err)
	require.NotNil(t, c.UserID)
	assert.Equal(t, uid, *c.UserID)
	assert.Empty(t, c.GuestName)
	assert.Empty(t, c.GuestEmail)
}

func TestAddComment_SanitisesMarkup(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	c, err := s.AddComment(ctx, news.ID, guest("Ann", "Ann@Example.com"), `<b>bold</b><script>alert(1)</script>`, nil)
	require.NoError(t, err)
	assert.Equal(t, "bold", c.Content)
	assert.Equal(t, "ann@example.com", c.GuestEmail)
}

func TestAddComment_ParentAndArticleChecks(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	first := testutil.CreateNews(t, e.db, author.UserID, true)
	second := testutil.CreateNews(t, e.db, author.UserID, true)

	root, err := s.AddComment(ctx, first.ID, guest("Ann", "ann@example.com"), "root", nil)
	require.NoError(t, err)

	_, err = s.AddComment(ctx, second.ID, guest("Ann", "ann@example.com"), "wrong thread", &root.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = s.AddComment(ctx, first.ID, guest("Ann", "ann@example.com"), "no parent", uintPtr(9999))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, s.SoftDeleteComment(ctx, root.ID, e.admin(t, "admin@example.com")))
	_, err = s.AddComment(ctx, first.ID, guest("Ann", "ann@example.com"), "reply to deleted", &root.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, e.db.Model(second).Update("is_deleted", true).Error)
	_, err = s.AddComment(ctx, second.ID, guest("Ann", "ann@example.com"), "deleted article", nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = s.AddComment(ctx, 4242, guest("Ann", "ann@example.com"), "missing article", nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEditComment_Authorization(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	other := e.user(t, "other@example.com")
	admin := e.admin(t, "admin@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	uid := author.UserID
	c, err := s.AddComment(ctx, news.ID, model.Author{UserID: &uid}, "original", nil)
	require.NoError(t, err)

	_, err = s.EditComment(ctx, c.ID, other, "hijack")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	e.clock.Advance(time.Minute)
	edited, err := s.EditComment(ctx, c.ID, author, "revised")
	require.NoError(t, err)
	assert.Equal(t, "revised", edited.Content)
	require.NotNil(t, edited.UpdatedAt)
	assert.True(t, edited.UpdatedAt.Equal(epoch.Add(time.Minute)))

	_, err = s.EditComment(ctx, c.ID, admin, "moderated")
	require.NoError(t, err)

	require.NoError(t, s.SoftDeleteComment(ctx, c.ID, author))
	_, err = s.EditComment(ctx, c.ID, author, "too late")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSoftDeleteComment_IdempotentAndKeepsReplies(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	other := e.user(t, "other@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	uid := author.UserID
	parent, err := s.AddComment(ctx, news.ID, model.Author{UserID: &uid}, "parent", nil)
	require.NoError(t, err)
	reply, err := s.AddComment(ctx, news.ID, guest("Bob", "bob@example.com"), "reply", &parent.ID)
	require.NoError(t, err)

	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(s.SoftDeleteComment(ctx, parent.ID, other)))
	require.NoError(t, s.SoftDeleteComment(ctx, parent.ID, author))
	require.NoError(t, s.SoftDeleteComment(ctx, parent.ID, author))

	got, err := e.repos.Comments.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)
}

func TestHideComment_AdminOnly(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	admin := e.admin(t, "admin@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	c, err := s.AddComment(ctx, news.ID, guest("Ann", "ann@example.com"), "spam", nil)
	require.NoError(t, err)

	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(s.HideComment(ctx, c.ID, author)))
	require.NoError(t, s.HideComment(ctx, c.ID, admin))

	forest, err := s.ListThread(ctx, news.ID, false)
	require.NoError(t, err)
	assert.Zero(t, forest.Len())

	require.NoError(t, s.UnhideComment(ctx, c.ID, admin))
	forest, err = s.ListThread(ctx, news.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, forest.Len())

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(s.HideComment(ctx, 777, admin)))
}

func TestListThread_FilteringAndOrphans(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	admin := e.admin(t, "admin@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)

	add := func(content string, parent *uint) *model.Comment {
		e.clock.Advance(time.Second)
		c, err := s.AddComment(ctx, news.ID, guest("Ann", "ann@example.com"), content, parent)
		require.NoError(t, err)
		return c
	}
	a := add("a", nil)
	b := add("b", &a.ID)
	c := add("c", &b.ID)
	d := add("d", nil)

	require.NoError(t, s.SoftDeleteComment(ctx, b.ID, admin))
	require.NoError(t, s.HideComment(ctx, d.ID, admin))

	forest, err := s.ListThread(ctx, news.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, forest.Len())

	// 重复遍历得到相同结果
	for range 2 {
		var roots []uint
		for n := range forest.All() {
			roots = append(roots, n.Comment.ID)
		}
		assert.Equal(t, []uint{a.ID}, roots)
	}
	require.Len(t, forest.Roots()[0].Replies, 1)
	assert.Equal(t, c.ID, forest.Roots()[0].Replies[0].Comment.ID)

	privileged, err := s.ListThread(ctx, news.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 4, privileged.Len())
	var order []uint
	for _, n := range privileged.Walk() {
		order = append(order, n.Comment.ID)
	}
	assert.Equal(t, []uint{a.ID, b.ID, c.ID, d.ID}, order)
}

func TestListThread_DeletedArticle(t *testing.T) {
	e := newEnv(t)
	s := newCommentService(e)
	author := e.user(t, "writer@example.com")
	news := testutil.CreateNews(t, e.db, author.UserID, true)
	require.NoError(t, e.db.Model(news).Update("is_deleted", true).Error)

	_, err := s.ListThread(ctx, news.ID, false)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = s.ListThread(ctx, news.ID, true)
	assert.NoError(t, err)
}
