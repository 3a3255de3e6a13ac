package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-cms/internal/model"
	"news-cms/pkg/apperr"
)

func TestStateOf(t *testing.T) {
	tests := []struct {
		flags Flags
		want  State
	}{
		{Flags{}, StatePending},
		{Flags{IsApproved: true}, StateApproved},
		{Flags{IsApproved: true, IsArchived: true}, StateArchived},
		{Flags{IsDeleted: true}, StateDeleted},
		{Flags{IsApproved: true, IsArchived: true, IsDeleted: true}, StateDeleted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StateOf(tt.flags), "%+v", tt.flags)
	}
}

func TestPlan_Lifecycle(t *testing.T) {
	flags := FlagsOf(&model.News{})
	require.Equal(t, StatePending, StateOf(flags))

	steps := []struct {
		action Action
		want   State
	}{
		{ActionApprove, StateApproved},
		{ActionArchive, StateArchived},
		{ActionRepost, StatePending},
		{ActionApprove, StateApproved},
	}
	for _, step := range steps {
		tr, err := Plan(flags, step.action)
		require.NoError(t, err, "action %s", step.action)
		assert.Equal(t, flags, tr.From)
		flags = tr.To
		assert.Equal(t, step.want, StateOf(flags), "after %s", step.action)
	}
}

func TestPlan_RepostNeverSkipsModeration(t *testing.T) {
	tr, err := Plan(Flags{IsApproved: true, IsArchived: true}, ActionRepost)
	require.NoError(t, err)
	assert.False(t, tr.To.IsApproved)
	assert.False(t, tr.To.IsArchived)
}

func TestPlan_ResubmitReturnsToPending(t *testing.T) {
	for _, f := range []Flags{{}, {IsApproved: true}, {IsApproved: true, IsArchived: true}} {
		tr, err := Plan(f, ActionResubmit)
		require.NoError(t, err)
		assert.Equal(t, f, tr.From)
		assert.Equal(t, StatePending, StateOf(tr.To))
	}

	_, err := Plan(Flags{IsDeleted: true}, ActionResubmit)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPlan_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		flags  Flags
		action Action
		kind   apperr.Kind
	}{
		{"archive from pending", Flags{}, ActionArchive, apperr.KindConflict},
		{"repost from pending", Flags{}, ActionRepost, apperr.KindConflict},
		{"repost from approved", Flags{IsApproved: true}, ActionRepost, apperr.KindConflict},
		{"approve approved", Flags{IsApproved: true}, ActionApprove, apperr.KindConflict},
		{"approve archived", Flags{IsApproved: true, IsArchived: true}, ActionApprove, apperr.KindConflict},
		{"archive archived", Flags{IsApproved: true, IsArchived: true}, ActionArchive, apperr.KindConflict},
		{"anything on deleted", Flags{IsApproved: true, IsDeleted: true}, ActionApprove, apperr.KindNotFound},
		{"delete twice", Flags{IsDeleted: true}, ActionDelete, apperr.KindNotFound},
		{"unknown", Flags{}, Action("publish"), apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.flags, tt.action)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestPlan_DeleteFromAnyState(t *testing.T) {
	for _, f := range []Flags{{}, {IsApproved: true}, {IsApproved: true, IsArchived: true}} {
		tr, err := Plan(f, ActionDelete)
		require.NoError(t, err)
		assert.True(t, tr.To.IsDeleted)
		assert.Equal(t, f.IsApproved, tr.To.IsApproved)
		assert.Equal(t, StateDeleted, StateOf(tr.To))
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		from   State
		action Action
		want   State
		kind   apperr.Kind
	}{
		{StatePending, ActionApprove, StateApproved, ""},
		{StateApproved, ActionArchive, StateArchived, ""},
		{StateArchived, ActionRepost, StatePending, ""},
		{StateArchived, ActionDelete, StateDeleted, ""},
		{StatePending, ActionArchive, "", apperr.KindConflict},
		{StateDeleted, ActionRepost, "", apperr.KindNotFound},
		{State("draft"), ActionApprove, "", apperr.KindValidation},
	}
	for _, tt := range tests {
		got, err := Next(tt.from, tt.action)
		if tt.kind != "" {
			assert.Equal(t, tt.kind, apperr.KindOf(err), "%s/%s", tt.from, tt.action)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
