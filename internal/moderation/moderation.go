// Package moderation 文章审核状态机
//
// 状态由三个独立标记推导：
//
//	Pending  : !approved && !archived
//	Approved : approved && !archived
//	Archived : archived（只能从 Approved 进入）
//	Deleted  : deleted，对其他标记具有吸收性，无法转出
package moderation

import (
	"fmt"

	"news-cms/internal/model"
	"news-cms/pkg/apperr"
)

// State 文章审核状态
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateArchived State = "archived"
	StateDeleted  State = "deleted"
)

// Action 状态迁移动作
type Action string

const (
	ActionApprove Action = "approve"
	ActionArchive Action = "archive"
	ActionRepost  Action = "repost"
	ActionDelete  Action = "delete"
	// ActionResubmit 作者修改内容后重新送审，任意未删除状态回到 Pending
	ActionResubmit Action = "resubmit"
)

// Flags 文章的三个可见性标记
type Flags struct {
	IsApproved bool
	IsArchived bool
	IsDeleted  bool
}

// FlagsOf 提取文章标记
func FlagsOf(n *model.News) Flags {
	return Flags{IsApproved: n.IsApproved, IsArchived: n.IsArchived, IsDeleted: n.IsDeleted}
}

// StateOf 由标记推导状态
func StateOf(f Flags) State {
	switch {
	case f.IsDeleted:
		return StateDeleted
	case f.IsArchived:
		return StateArchived
	case f.IsApproved:
		return StateApproved
	default:
		return StatePending
	}
}

// Transition 一次合法迁移：From 为迁移前必须满足的标记，To 为迁移后的标记
type Transition struct {
	Action Action
	From   Flags
	To     Flags
}

// Plan 校验动作在当前状态下是否合法并给出迁移
// 已删除文章视为不存在
func Plan(current Flags, action Action) (Transition, error) {
	state := StateOf(current)
	if state == StateDeleted {
		return Transition{}, apperr.NotFound("news")
	}

	t := Transition{Action: action, From: current}
	switch action {
	case ActionApprove:
		if state != StatePending {
			return Transition{}, invalid(state, action)
		}
		t.To = Flags{IsApproved: true}
	case ActionArchive:
		if state != StateApproved {
			return Transition{}, invalid(state, action)
		}
		t.To = Flags{IsApproved: true, IsArchived: true}
	case ActionRepost:
		if state != StateArchived {
			return Transition{}, invalid(state, action)
		}
		// 重新进入审核队列
		t.To = Flags{}
	case ActionResubmit:
		t.To = Flags{}
	case ActionDelete:
		t.To = current
		t.To.IsDeleted = true
	default:
		return Transition{}, apperr.Validation(fmt.Sprintf("unknown action %q", action))
	}
	return t, nil
}

func invalid(state State, action Action) error {
	return apperr.Conflict(fmt.Sprintf("cannot %s a news article in state %s", action, state))
}

// Next 仅按状态给出迁移后的状态
func Next(state State, action Action) (State, error) {
	var f Flags
	switch state {
	case StateDeleted:
		f.IsDeleted = true
	case StateArchived:
		f = Flags{IsApproved: true, IsArchived: true}
	case StateApproved:
		f.IsApproved = true
	case StatePending:
	default:
		return "", apperr.Validation(fmt.Sprintf("unknown state %q", state))
	}
	t, err := Plan(f, action)
	if err != nil {
		return "", err
	}
	return StateOf(t.To), nil
}
