package poller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/handlers/dto"
)

// fakeChatServer — минимальный сервер сообщений для цикла доставки.
type fakeChatServer struct {
	mu        sync.Mutex
	messages  []dto.MessageResponse
	fetches   int32
	failFetch bool
}

func (f *fakeChatServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&f.fetches, 1)
			f.mu.Lock()
			fail := f.failFetch
			snapshot := append([]dto.MessageResponse(nil), f.messages...)
			f.mu.Unlock()

			if fail {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"messages": snapshot})

		case http.MethodPost:
			var req dto.SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			key, _ := uuid.Parse(req.ClientKey)
			msg := dto.MessageResponse{
				ID:        uuid.New(),
				Content:   req.Content,
				ClientKey: &key,
				CreatedAt: time.Now(),
			}
			f.mu.Lock()
			f.messages = append(f.messages, msg)
			f.mu.Unlock()

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"message": msg})
		}
	})
	return mux
}

func (f *fakeChatServer) fetchCount() int32 {
	return atomic.LoadInt32(&f.fetches)
}

func (f *fakeChatServer) addMessage(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, dto.MessageResponse{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now(),
	})
}

func testOptions() Options {
	return Options{
		BaseInterval:   15 * time.Millisecond,
		MaxInterval:    45 * time.Millisecond,
		Step:           15 * time.Millisecond,
		ReconcileDelay: 5 * time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestPoller_BackoffOnEmptyAndReset(t *testing.T) {
	fake := &fakeChatServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	opts := testOptions()
	p := New(NewClient(srv.URL, "token"), uuid.New(), opts, nil, nil)
	p.Start()
	defer p.Stop()

	// Пустые ответы растят интервал до потолка
	waitFor(t, 2*time.Second, func() bool {
		return p.CurrentInterval() == opts.MaxInterval
	})

	// Появление сообщений сбрасывает интервал к базовому
	fake.addMessage("hello")
	waitFor(t, 2*time.Second, func() bool {
		return p.CurrentInterval() == opts.BaseInterval
	})
}

func TestPoller_ReplacesSnapshotFromServer(t *testing.T) {
	fake := &fakeChatServer{}
	fake.addMessage("one")
	fake.addMessage("two")
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	var mu sync.Mutex
	var latest []dto.MessageResponse
	onUpdate := func(msgs []dto.MessageResponse) {
		mu.Lock()
		latest = msgs
		mu.Unlock()
	}

	p := New(NewClient(srv.URL, "token"), uuid.New(), testOptions(), onUpdate, nil)
	p.Start()
	defer p.Stop()

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 2
	})

	fake.addMessage("three")
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 3 && latest[2].Content == "three"
	})
}

func TestPoller_SendOptimisticThenReconciled(t *testing.T) {
	fake := &fakeChatServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	p := New(NewClient(srv.URL, "token"), uuid.New(), testOptions(), nil, nil)
	p.Start()
	defer p.Stop()

	key, err := p.Send("hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// Сразу после отправки локальная копия уже видна
	found := false
	for _, m := range p.Snapshot() {
		if m.ClientKey != nil && *m.ClientKey == key {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected optimistic local copy right after send")
	}

	// После сверки остаётся одна копия с серверным ID
	waitFor(t, 2*time.Second, func() bool {
		snapshot := p.Snapshot()
		count := 0
		serverID := false
		for _, m := range snapshot {
			if m.Content == "hi" {
				count++
				serverID = m.ID != uuid.Nil
			}
		}
		return count == 1 && serverID
	})
}

func TestPoller_SendFailureDropsOptimisticCopy(t *testing.T) {
	fake := &fakeChatServer{}
	srv := httptest.NewServer(fake.handler())

	p := New(NewClient(srv.URL, "token"), uuid.New(), testOptions(), nil, func(error) {})
	p.Start()
	defer p.Stop()

	srv.Close() // отправка упрётся в закрытый сервер

	if _, err := p.Send("hi"); err == nil {
		t.Fatalf("expected send error")
	}
	for _, m := range p.Snapshot() {
		if m.Content == "hi" {
			t.Errorf("optimistic copy must be dropped after failed send")
		}
	}
}

func TestPoller_FetchErrorKeepsLocalState(t *testing.T) {
	fake := &fakeChatServer{}
	fake.addMessage("kept")
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	var errs int32
	p := New(NewClient(srv.URL, "token"), uuid.New(), testOptions(), nil, func(error) {
		atomic.AddInt32(&errs, 1)
	})
	p.Start()
	defer p.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return len(p.Snapshot()) == 1
	})

	fake.mu.Lock()
	fake.failFetch = true
	fake.mu.Unlock()

	waitFor(t, 2*time.Second, func() bool {
		return atomic.LoadInt32(&errs) > 0
	})

	// Цикл жив, локальный список не потерян
	if got := p.Snapshot(); len(got) != 1 || got[0].Content != "kept" {
		t.Errorf("expected previous local state to survive failed fetch, got %+v", got)
	}
	if p.CurrentState() != StatePolling {
		t.Errorf("expected poller to keep polling after fetch error")
	}
}

func TestPoller_StopCancelsAllActivity(t *testing.T) {
	fake := &fakeChatServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	p := New(NewClient(srv.URL, "token"), uuid.New(), testOptions(), nil, nil)
	p.Start()

	waitFor(t, 2*time.Second, func() bool {
		return fake.fetchCount() > 0
	})

	p.Stop()
	if p.CurrentState() != StateStopped {
		t.Fatalf("expected StateStopped after Stop")
	}

	before := fake.fetchCount()
	time.Sleep(10 * testOptions().MaxInterval)
	if after := fake.fetchCount(); after != before {
		t.Errorf("expected no fetches after Stop, got %d new", after-before)
	}

	if _, err := p.Send("late"); err == nil {
		t.Errorf("expected Send to fail after Stop")
	}

	// Повторный Stop безопасен
	p.Stop()
}

func TestPoller_SendRejectsBlankContent(t *testing.T) {
	p := New(NewClient("http://127.0.0.1:0", "token"), uuid.New(), testOptions(), nil, nil)
	if _, err := p.Send("   "); err == nil {
		t.Errorf("expected error for blank content")
	}
}
