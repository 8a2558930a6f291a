package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"redweb-backend/internal/apperr"
	"redweb-backend/internal/models"
	"redweb-backend/internal/services"
	"redweb-backend/internal/testutil"
)

func send(t *testing.T, env *testutil.Env, from, to models.User, content string) models.Message {
	t.Helper()
	m, err := env.Services.Messages.Send(context.Background(), testutil.Caller(from), services.SendInput{ReceiverID: to.ID, Content: content})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	env.Clock.Advance(time.Second)
	return m
}

func TestSend_Validation(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	a := env.AddUser(t, testutil.TestUser{Email: "a@x.com"})

	cases := []struct {
		name string
		in   services.SendInput
		kind apperr.Kind
	}{
		{"no receiver", services.SendInput{Content: "hi"}, apperr.KindValidation},
		{"blank content", services.SendInput{ReceiverID: "someone", Content: "   "}, apperr.KindValidation},
		{"markup only", services.SendInput{ReceiverID: "someone", Content: "<img src=x>"}, apperr.KindValidation},
		{"self", services.SendInput{ReceiverID: a.ID, Content: "hi"}, apperr.KindValidation},
		{"unknown receiver", services.SendInput{ReceiverID: "ghost", Content: "hi"}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Services.Messages.Send(ctx, testutil.Caller(a), tc.in)
			if !apperr.Is(err, tc.kind) {
				t.Errorf("expected %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestConversations_GroupedByPair(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	a := env.AddUser(t, testutil.TestUser{Email: "a@x.com", FirstName: "Ann"})
	b := env.AddUser(t, testutil.TestUser{Email: "b@x.com", FirstName: "Ben"})
	c := env.AddUser(t, testutil.TestUser{Email: "c@x.com", FirstName: "Cy"})

	send(t, env, a, b, "hello b")
	send(t, env, b, a, "hi a")
	send(t, env, b, a, "  <i>still there?</i> ")
	send(t, env, c, a, "from c")
	send(t, env, a, c, "latest")

	convs, err := env.Services.Messages.Conversations(ctx, testutil.Caller(a))
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].OtherUser.ID != c.ID || convs[0].LastMessage.Content != "latest" {
		t.Errorf("unexpected first conversation: %+v", convs[0])
	}
	if convs[0].UnreadCount != 1 {
		t.Errorf("got unread %d, want 1", convs[0].UnreadCount)
	}
	withB := convs[1]
	if withB.ConversationID != models.ConversationKey(a.ID, b.ID) {
		t.Errorf("got key %q, want %q", withB.ConversationID, models.ConversationKey(a.ID, b.ID))
	}
	if withB.LastMessage.Content != "still there?" {
		t.Errorf("got last message %q, want %q", withB.LastMessage.Content, "still there?")
	}
	if withB.OtherUser.FirstName != "Ben" || withB.UnreadCount != 2 {
		t.Errorf("unexpected conversation with b: %+v", withB)
	}

	thread, err := env.Services.Messages.Conversation(ctx, testutil.Caller(a), b.ID)
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}
	if len(thread.Messages) != 3 || thread.Messages[0].Content != "hello b" {
		t.Errorf("unexpected thread: %+v", thread.Messages)
	}

	n, err := env.Services.Messages.MarkRead(ctx, testutil.Caller(a), b.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if n != 2 {
		t.Errorf("marked %d, want 2", n)
	}
	n, err = env.Services.Messages.MarkRead(ctx, testutil.Caller(a), b.ID)
	if err != nil || n != 0 {
		t.Errorf("second MarkRead: n=%d err=%v", n, err)
	}
	convs, err = env.Services.Messages.Conversations(ctx, testutil.Caller(a))
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if convs[1].UnreadCount != 0 {
		t.Errorf("got unread %d after mark-read, want 0", convs[1].UnreadCount)
	}

	convsB, err := env.Services.Messages.Conversations(ctx, testutil.Caller(b))
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(convsB) != 1 || convsB[0].ConversationID != withB.ConversationID {
		t.Errorf("b sees %+v", convsB)
	}
}

func TestSearchUsers(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	me := env.AddUser(t, testutil.TestUser{Email: "donor-me@x.com", FirstName: "Donor"})
	for i := 0; i < 12; i++ {
		env.AddUser(t, testutil.TestUser{Email: fmt.Sprintf("donor%d@x.com", i), FirstName: "Donor"})
	}
	env.AddUser(t, testutil.TestUser{Email: "zed@x.com", FirstName: "Zed", LastName: "Quinn"})

	short, err := env.Services.Messages.SearchUsers(ctx, testutil.Caller(me), "d")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(short) != 0 {
		t.Errorf("expected no results for a 1-char query, got %d", len(short))
	}

	many, err := env.Services.Messages.SearchUsers(ctx, testutil.Caller(me), "DONOR")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(many) != 10 {
		t.Errorf("got %d results, want 10", len(many))
	}
	for _, u := range many {
		if u.ID == me.ID {
			t.Error("search returned the caller")
		}
	}

	byName, err := env.Services.Messages.SearchUsers(ctx, testutil.Caller(me), "zed qu")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(byName) != 1 || byName[0].Email != "zed@x.com" {
		t.Errorf("unexpected results: %+v", byName)
	}
}
