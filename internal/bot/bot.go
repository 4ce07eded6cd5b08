package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/draft"
	"github.com/akaliyev/sponso/internal/outreach"
)

// chatQueueSize bounds the per-conversation event backlog. A chat that
// overflows it (events arriving faster than its worker drains them) has the
// excess dropped rather than blocking every other conversation.
const chatQueueSize = 32

// Daemon is the main bot process. It connects to a chat platform via an
// Adapter, pumps inbound events through the Router, and optionally posts a
// daily pipeline digest on a cron schedule.
type Daemon struct {
	db      *gorm.DB
	cfg     *config.Config
	adapter Adapter
	drafter draft.Drafter
	out     io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	DB      *gorm.DB
	Config  *config.Config
	Adapter Adapter
	Drafter draft.Drafter // optional; defaults per the OpenAI config
	Out     io.Writer     // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("bot: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("bot: config is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	drafter := opts.Drafter
	if drafter == nil {
		d, err := draft.ForConfig(opts.Config.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("bot: build drafter: %w", err)
		}
		drafter = d
	}
	return &Daemon{
		db:      opts.DB,
		cfg:     opts.Config,
		adapter: opts.Adapter,
		drafter: drafter,
		out:     out,
	}, nil
}

// Run starts the bot. It connects the adapter, builds the session store,
// controller, and router, and blocks until the context is cancelled. On
// shutdown it closes the adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Sponso bot connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("bot: connect: %w", err)
	}

	// Extract bot user ID if the adapter supports it.
	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	ctrl, err := outreach.NewController(outreach.ControllerOpts{
		DB:      d.db,
		Drafter: d.drafter,
		Pitch:   d.cfg.Pitch,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build controller: %w", err)
	}

	sessions := NewSessionStore()

	router, err := NewRouter(RouterOpts{
		DB:         d.db,
		Sessions:   sessions,
		Controller: ctrl,
		Adapter:    d.adapter,
		ListLimit:  d.cfg.Bot.ListLimit,
		BotUserID:  botUserID,
		Out:        d.out,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: build router: %w", err)
	}

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: listen: %w", err)
	}

	go d.runDigestScheduler(ctx, ctrl)

	fmt.Fprintf(d.out, "Sponso bot online\n")
	if err := d.adapter.Send(ctx, OutboundMessage{
		Text:    "Sponso is up.\nPick an action from the menu.",
		Buttons: MainMenuButtons(),
	}); err != nil {
		log.Printf("bot: send online message: %v", err)
	}

	// Events are dispatched to one worker goroutine per conversation, so a
	// slow drafting call stalls only the chat that triggered it while that
	// chat's own dialog inputs stay ordered.
	queues := make(map[string]chan InboundMessage)
	var workers sync.WaitGroup
	defer func() {
		for _, q := range queues {
			close(q)
		}
		workers.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Sponso bot shutting down...\n")
			if err := d.adapter.Close(); err != nil {
				log.Printf("bot: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Sponso bot stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				fmt.Fprintf(d.out, "Sponso bot inbound channel closed\n")
				return nil
			}
			q, ok := queues[msg.ChatID]
			if !ok {
				q = make(chan InboundMessage, chatQueueSize)
				queues[msg.ChatID] = q
				workers.Add(1)
				go func(q <-chan InboundMessage) {
					defer workers.Done()
					for m := range q {
						router.Handle(ctx, m)
					}
				}(q)
			}
			select {
			case q <- msg:
			default:
				log.Printf("bot: chat %s event queue full, dropping event", msg.ChatID)
			}
		}
	}
}

// runDigestScheduler posts the pipeline summary on the configured cron
// schedule. It returns immediately when no schedule is set.
func (d *Daemon) runDigestScheduler(ctx context.Context, ctrl *outreach.Controller) {
	expr := d.cfg.Bot.DigestCron
	if expr == "" {
		return
	}
	wait, err := nextCronDuration(expr)
	if err != nil {
		log.Printf("bot: digest disabled: %v", err)
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.fireDigest(ctx, ctrl)
			// expr already parsed once, so re-arming cannot fail.
			wait, _ = nextCronDuration(expr)
			timer.Reset(wait)
		}
	}
}

// fireDigest builds and sends a single pipeline digest.
func (d *Daemon) fireDigest(ctx context.Context, ctrl *outreach.Controller) {
	summary, err := ctrl.Summarize()
	if err != nil {
		log.Printf("bot: digest: %v", err)
		return
	}
	if summary.Total == 0 {
		// No leads, no digest.
		return
	}
	if err := d.adapter.Send(ctx, OutboundMessage{
		Text: "Daily digest\n" + RenderSummary(summary),
	}); err != nil {
		log.Printf("bot: send digest: %v", err)
	}
}
