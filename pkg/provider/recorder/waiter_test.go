package recorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aimeet/aimeet/pkg/provider/recorder"
	"github.com/aimeet/aimeet/pkg/provider/recorder/mock"
)

// botAt builds a bot whose status history has progressed through codes.
func botAt(id string, codes ...recorder.StatusCode) *recorder.Bot {
	changes := make([]recorder.StatusChange, 0, len(codes))
	for i, c := range codes {
		changes = append(changes, recorder.StatusChange{
			Code:      c,
			CreatedAt: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
		})
	}
	return &recorder.Bot{ID: id, StatusChanges: changes}
}

func TestWait_ReturnsBotOnDone(t *testing.T) {
	t.Parallel()
	client := &mock.Client{
		GetBotResponses: []*recorder.Bot{
			botAt("b1", recorder.StatusJoining),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording,
				recorder.StatusCallEnded, recorder.StatusDone),
		},
	}
	w := &recorder.Waiter{Client: client, PollInterval: time.Millisecond}

	bot, err := w.Wait(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if bot.ID != "b1" {
		t.Errorf("bot.ID = %q, want %q", bot.ID, "b1")
	}
	status, _ := recorder.LatestStatus(bot)
	if status.Code != recorder.StatusDone {
		t.Errorf("final status = %q, want %q", status.Code, recorder.StatusDone)
	}
}

func TestWait_CallbackOncePerTransition(t *testing.T) {
	t.Parallel()
	// in_call_recording is observed by three consecutive polls but must
	// trigger the callback only once.
	client := &mock.Client{
		GetBotResponses: []*recorder.Bot{
			botAt("b1", recorder.StatusJoining),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording,
				recorder.StatusCallEnded),
			botAt("b1", recorder.StatusJoining, recorder.StatusInCallRecording,
				recorder.StatusCallEnded, recorder.StatusDone),
		},
	}

	var observed []recorder.StatusCode
	w := &recorder.Waiter{
		Client:       client,
		PollInterval: time.Millisecond,
		OnStatusChange: func(s recorder.StatusChange) {
			observed = append(observed, s.Code)
		},
	}

	if _, err := w.Wait(context.Background(), "b1"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	want := []recorder.StatusCode{
		recorder.StatusJoining,
		recorder.StatusInCallRecording,
		recorder.StatusCallEnded,
		recorder.StatusDone,
	}
	if len(observed) != len(want) {
		t.Fatalf("observed %d transitions %v, want %d %v", len(observed), observed, len(want), want)
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Errorf("transition[%d] = %q, want %q", i, observed[i], want[i])
		}
	}
}

func TestWait_FatalStatusFails(t *testing.T) {
	t.Parallel()
	bot := botAt("b2", recorder.StatusJoining)
	bot.StatusChanges = append(bot.StatusChanges, recorder.StatusChange{
		Code:    recorder.StatusFatal,
		Message: "meeting not found",
		SubCode: "meeting_not_found",
	})
	client := &mock.Client{GetBotResponses: []*recorder.Bot{bot}}
	w := &recorder.Waiter{Client: client, PollInterval: time.Millisecond}

	_, err := w.Wait(context.Background(), "b2")
	var failed *recorder.BotFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Wait error = %v, want *BotFailedError", err)
	}
	if failed.Message != "meeting not found" {
		t.Errorf("Message = %q, want %q", failed.Message, "meeting not found")
	}
	if failed.SubCode != "meeting_not_found" {
		t.Errorf("SubCode = %q, want %q", failed.SubCode, "meeting_not_found")
	}
}

func TestWait_Timeout(t *testing.T) {
	t.Parallel()
	// The bot never leaves in_call_recording.
	client := &mock.Client{
		GetBotResponses: []*recorder.Bot{botAt("b3", recorder.StatusInCallRecording)},
	}
	w := &recorder.Waiter{
		Client:       client,
		PollInterval: time.Millisecond,
		MaxWait:      20 * time.Millisecond,
	}

	_, err := w.Wait(context.Background(), "b3")
	if !errors.Is(err, recorder.ErrWaitTimeout) {
		t.Fatalf("Wait error = %v, want ErrWaitTimeout", err)
	}
	// Polling must have happened at roughly the configured cadence; with a
	// 1ms interval and a 20ms budget there should be well over one poll.
	if len(client.GetBotCalls) < 2 {
		t.Errorf("GetBot calls = %d, want at least 2", len(client.GetBotCalls))
	}
}

func TestWait_ContextCancellationAbortsSleep(t *testing.T) {
	t.Parallel()
	client := &mock.Client{
		GetBotResponses: []*recorder.Bot{botAt("b4", recorder.StatusJoining)},
	}
	// Long poll interval: cancellation must not wait for it to elapse.
	w := &recorder.Waiter{Client: client, PollInterval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := w.Wait(ctx, "b4")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait took %v after cancellation, want prompt return", elapsed)
	}
}

func TestWait_GetBotErrorPropagates(t *testing.T) {
	t.Parallel()
	client := &mock.Client{GetBotErr: recorder.ErrNotFound}
	w := &recorder.Waiter{Client: client, PollInterval: time.Millisecond}

	_, err := w.Wait(context.Background(), "nope")
	if !errors.Is(err, recorder.ErrNotFound) {
		t.Fatalf("Wait error = %v, want ErrNotFound", err)
	}
}
