package app

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/influence-hub/community-bot/internal/model"
)

type stateKind int

const (
	stateNone stateKind = iota
	stateAwaitProof
	stateAdminTaskTitle
	stateAdminTaskDescription
	stateAdminTaskReward
	stateAdminTaskDifficulty
	stateAdminTaskDeadline
	stateBroadcastCompose
	stateMentorTopic
	stateEventTitle
	stateEventDate
)

type taskDraft struct {
	Title       string
	Description string
	Reward      int
	Difficulty  model.TaskDifficulty
}

type eventDraft struct {
	Title string
}

type convState struct {
	Kind stateKind

	TaskID        int
	MentorID      int
	BroadcastText string
	TaskDraft     taskDraft
	EventDraft    eventDraft
}

// conversations keeps per-chat dialogue state. An LRU bounds memory and
// quietly drops stale dialogues of users who walked away mid-flow.
type conversations struct {
	cache *lru.Cache[int64, *convState]
}

const conversationCapacity = 1024

func newConversations() (*conversations, error) {
	cache, err := lru.New[int64, *convState](conversationCapacity)
	if err != nil {
		return nil, err
	}
	return &conversations{cache: cache}, nil
}

func (c *conversations) get(chatID int64) (*convState, bool) {
	return c.cache.Get(chatID)
}

func (c *conversations) set(chatID int64, state *convState) {
	c.cache.Add(chatID, state)
}

func (c *conversations) clear(chatID int64) {
	c.cache.Remove(chatID)
}

// eventDateLayout is what admins type when scheduling an event.
const eventDateLayout = "2006-01-02 15:04"

func parseEventDate(s string) (time.Time, error) {
	return time.Parse(eventDateLayout, s)
}
