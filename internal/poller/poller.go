package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/handlers/dto"
)

// State — состояние цикла доставки открытого диалога.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateSending
	StateStopped
)

// Options задает интервалы цикла. Пустой интервал растит паузу на Step
// до MaxInterval, любой непустой ответ сбрасывает её к BaseInterval.
type Options struct {
	BaseInterval   time.Duration
	MaxInterval    time.Duration
	Step           time.Duration
	ReconcileDelay time.Duration
}

func (o *Options) withDefaults() {
	if o.BaseInterval == 0 {
		o.BaseInterval = 2 * time.Second
	}
	if o.MaxInterval == 0 {
		o.MaxInterval = 10 * time.Second
	}
	if o.Step == 0 {
		o.Step = time.Second
	}
	if o.ReconcileDelay == 0 {
		o.ReconcileDelay = 300 * time.Millisecond
	}
}

// Poller опрашивает сервер по таймеру и сводит локальный список сообщений
// с серверным. Каждый успешный опрос целиком замещает локальный снимок;
// оптимистично добавленные и ещё не подтверждённые сообщения доклеиваются
// в конец и схлопываются по клиентскому ключу, когда приходит серверная копия.
type Poller struct {
	client         *Client
	conversationID uuid.UUID
	opts           Options

	onUpdate func([]dto.MessageResponse)
	onError  func(error)

	mu       sync.Mutex
	state    State
	interval time.Duration
	messages []dto.MessageResponse
	pending  []dto.MessageResponse

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}
}

func New(client *Client, conversationID uuid.UUID, opts Options, onUpdate func([]dto.MessageResponse), onError func(error)) *Poller {
	opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		client:         client,
		conversationID: conversationID,
		opts:           opts,
		onUpdate:       onUpdate,
		onError:        onError,
		state:          StateIdle,
		interval:       opts.BaseInterval,
		ctx:            ctx,
		cancel:         cancel,
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
}

// Start запускает цикл: немедленный опрос, дальше по таймеру.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return
	}
	p.state = StatePolling
	p.mu.Unlock()

	go p.run()
}

// Stop останавливает цикл; после возврата ни один таймер не сработает
// и ни один запрос не начнётся.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	wasIdle := p.state == StateIdle
	p.state = StateStopped
	p.mu.Unlock()

	p.cancel()
	if !wasIdle {
		<-p.done
	}
}

// Send оптимистично доклеивает сообщение локально, отправляет его на
// сервер и планирует внеочередной сверочный опрос. Возвращает клиентский
// ключ сообщения.
func (p *Poller) Send(content string) (uuid.UUID, error) {
	if strings.TrimSpace(content) == "" {
		return uuid.Nil, errors.New("content must not be empty")
	}

	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return uuid.Nil, errors.New("poller is stopped")
	}
	prevState := p.state
	p.state = StateSending

	key := uuid.New()
	local := dto.MessageResponse{
		ConversationID: p.conversationID,
		Content:        content,
		ClientKey:      &key,
		CreatedAt:      time.Now(),
	}
	p.pending = append(p.pending, local)
	p.messages = append(p.messages, local)
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snapshot)

	_, err := p.client.SendMessage(p.ctx, p.conversationID, content, key)

	p.mu.Lock()
	if p.state == StateSending {
		p.state = prevState
	}
	if err != nil {
		// Запись не состоялась: убираем оптимистичную копию,
		// вызывающий должен отправить заново.
		p.dropPendingLocked(key)
		snapshot = p.snapshotLocked()
	}
	p.mu.Unlock()

	if err != nil {
		p.notify(snapshot)
		p.fail(err)
		return key, err
	}

	time.AfterFunc(p.opts.ReconcileDelay, func() {
		select {
		case p.wake <- struct{}{}:
		case <-p.ctx.Done():
		}
	})

	return key, nil
}

// Snapshot возвращает копию текущего локального списка.
func (p *Poller) Snapshot() []dto.MessageResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// CurrentState возвращает состояние цикла.
func (p *Poller) CurrentState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentInterval возвращает текущую паузу между опросами.
func (p *Poller) CurrentInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

func (p *Poller) run() {
	defer close(p.done)

	p.fetch()

	timer := time.NewTimer(p.CurrentInterval())
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return

		case <-timer.C:
			p.fetch()

		case <-p.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			p.fetch()
		}

		timer.Reset(p.CurrentInterval())
	}
}

func (p *Poller) fetch() {
	msgs, err := p.client.FetchMessages(p.ctx, p.conversationID)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		// Опрос провалился: локальный список остаётся прежним,
		// цикл продолжает работать.
		p.fail(err)
		return
	}

	p.mu.Lock()
	if len(msgs) == 0 {
		p.interval += p.opts.Step
		if p.interval > p.opts.MaxInterval {
			p.interval = p.opts.MaxInterval
		}
	} else {
		p.interval = p.opts.BaseInterval
	}
	p.mergeLocked(msgs)
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(snapshot)
}

// mergeLocked замещает локальный список серверным снимком и доклеивает
// ещё не подтверждённые оптимистичные сообщения. Сверка идёт по
// клиентскому ключу, затем по серверному ID — никогда по позиции.
func (p *Poller) mergeLocked(server []dto.MessageResponse) {
	confirmed := make(map[uuid.UUID]bool, len(server))
	for _, m := range server {
		if m.ClientKey != nil {
			confirmed[*m.ClientKey] = true
		}
		confirmed[m.ID] = true
	}

	remaining := p.pending[:0]
	for _, m := range p.pending {
		if m.ClientKey != nil && confirmed[*m.ClientKey] {
			continue
		}
		remaining = append(remaining, m)
	}
	p.pending = remaining

	p.messages = append(append([]dto.MessageResponse(nil), server...), p.pending...)
}

func (p *Poller) dropPendingLocked(key uuid.UUID) {
	remaining := p.pending[:0]
	for _, m := range p.pending {
		if m.ClientKey != nil && *m.ClientKey == key {
			continue
		}
		remaining = append(remaining, m)
	}
	p.pending = remaining

	kept := p.messages[:0]
	for _, m := range p.messages {
		if m.ClientKey != nil && *m.ClientKey == key && m.ID == uuid.Nil {
			continue
		}
		kept = append(kept, m)
	}
	p.messages = kept
}

func (p *Poller) snapshotLocked() []dto.MessageResponse {
	return append([]dto.MessageResponse(nil), p.messages...)
}

func (p *Poller) notify(snapshot []dto.MessageResponse) {
	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
}

func (p *Poller) fail(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}
