// Command deskwatch is a terminal notifier for department admins. It keeps a
// live connection to the helpdesk event stream and records every ticket
// event in a persistent notification list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/redis"
	"github.com/lorrc/helpdesk-portal/internal/client"
	"github.com/lorrc/helpdesk-portal/internal/client/notifications"
	"github.com/lorrc/helpdesk-portal/internal/config"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/infrastructure/logging"
)

type options struct {
	server       string
	token        string
	userID       string
	departmentID string
	locations    []string
	redisAddr    string
	redisPass    string
	redisDB      int
	prefix       string
	memoryStore  bool
	logLevel     string
	quiet        bool
	list         bool
	markRead     []string
	markAllRead  bool
	remove       []string
	clear        bool
	logout       bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("deskwatch", pflag.ContinueOnError)
	fs.StringVarP(&opts.server, "server", "s", "ws://localhost:8080/api/v1/ws", "websocket endpoint of the helpdesk API")
	fs.StringVarP(&opts.token, "token", "t", "", "access token (stored for later runs)")
	fs.StringVar(&opts.userID, "user-id", "", "id of the signed-in admin")
	fs.StringVar(&opts.departmentID, "department-id", "", "department of the signed-in admin")
	fs.StringArrayVar(&opts.locations, "location", nil, "assigned location as <building-id>:<floor>[:<lab>,<lab>] (repeatable)")
	fs.StringVar(&opts.redisAddr, "redis-addr", "localhost:6379", "redis address for local state")
	fs.StringVar(&opts.redisPass, "redis-password", "", "redis password")
	fs.IntVar(&opts.redisDB, "redis-db", 0, "redis database")
	fs.StringVar(&opts.prefix, "prefix", "deskwatch", "key prefix for local state")
	fs.BoolVar(&opts.memoryStore, "memory", false, "keep state in memory only")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "do not ring the terminal bell")
	fs.BoolVarP(&opts.list, "list", "l", false, "print stored notifications and exit")
	fs.StringArrayVar(&opts.markRead, "mark-read", nil, "mark the notification with this id read and exit (repeatable)")
	fs.BoolVar(&opts.markAllRead, "mark-all-read", false, "mark every stored notification read and exit")
	fs.StringArrayVar(&opts.remove, "remove", nil, "delete the notification with this id and exit (repeatable)")
	fs.BoolVar(&opts.clear, "clear", false, "delete every stored notification and exit")
	fs.BoolVar(&opts.logout, "logout", false, "forget the stored session and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// identityFromFlags returns nil when no token was given on the command line.
func identityFromFlags(opts *options) (*client.Identity, error) {
	if opts.token == "" {
		return nil, nil
	}
	userID, err := uuid.Parse(opts.userID)
	if err != nil {
		return nil, fmt.Errorf("--user-id: %w", err)
	}
	id := &client.Identity{UserID: userID, Token: opts.token}
	if opts.departmentID != "" {
		dept, err := uuid.Parse(opts.departmentID)
		if err != nil {
			return nil, fmt.Errorf("--department-id: %w", err)
		}
		id.DepartmentID = &dept
	}
	for _, raw := range opts.locations {
		loc, err := parseLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("--location %q: %w", raw, err)
		}
		id.Locations = append(id.Locations, loc)
	}
	return id, nil
}

// parseLocation reads <building-id>:<floor>[:<lab>,<lab>].
func parseLocation(raw string) (domain.AdminLocation, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return domain.AdminLocation{}, errors.New("expected <building-id>:<floor>")
	}
	building, err := uuid.Parse(parts[0])
	if err != nil {
		return domain.AdminLocation{}, fmt.Errorf("building: %w", err)
	}
	floor, err := strconv.Atoi(parts[1])
	if err != nil {
		return domain.AdminLocation{}, fmt.Errorf("floor: %w", err)
	}

	loc := domain.AdminLocation{BuildingID: building, Floor: &floor}
	if len(parts) == 3 {
		for _, lab := range strings.Split(parts[2], ",") {
			if lab = strings.TrimSpace(lab); lab != "" {
				loc.Labs = append(loc.Labs, lab)
			}
		}
	}
	return loc, nil
}

func openKV(ctx context.Context, opts *options, logger *slog.Logger) (ports.KVStore, func()) {
	if opts.memoryStore {
		return memory.NewKVStore(), func() {}
	}
	rc := redis.NewClient(ctx, config.RedisConfig{
		Enabled:  true,
		Addr:     opts.redisAddr,
		Password: opts.redisPass,
		DB:       opts.redisDB,
	}, logger)
	return redis.NewKVStore(rc, opts.prefix), rc.Close
}

// toast prints one line per notification and optionally rings the bell.
func toast(out io.Writer, bell bool) client.AlerterFunc {
	return func(n notifications.Notification) error {
		prefix := ""
		if bell {
			prefix = "\a"
		}
		ticket := ""
		if n.TicketID != nil {
			ticket = fmt.Sprintf(" #%d", *n.TicketID)
		}
		_, err := fmt.Fprintf(out, "%s[%s] %s%s: %s\n",
			prefix, n.Timestamp.Local().Format(time.Kitchen), n.Title, ticket, n.Message)
		return err
	}
}

func printList(out io.Writer, store *notifications.Store) {
	fmt.Fprintf(out, "%d unread\n", store.UnreadCount())
	for _, n := range store.List() {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s  %s  %s: %s\n", mark, n.ID, n.Timestamp.Local().Format(time.DateTime), n.Title, n.Message)
	}
}

// manage applies the list maintenance flags. It reports whether any was
// given, in which case deskwatch exits without connecting.
func manage(ctx context.Context, opts *options, store *notifications.Store) (bool, error) {
	handled := false
	for _, id := range opts.markRead {
		handled = true
		if err := store.MarkRead(ctx, id); err != nil {
			return true, err
		}
	}
	if opts.markAllRead {
		handled = true
		if err := store.MarkAllRead(ctx); err != nil {
			return true, err
		}
	}
	for _, id := range opts.remove {
		handled = true
		if err := store.Remove(ctx, id); err != nil {
			return true, err
		}
	}
	if opts.clear {
		handled = true
		if err := store.ClearAll(ctx); err != nil {
			return true, err
		}
	}
	return handled, nil
}

// maintain runs the offline commands: logout, list maintenance and
// listing. done is true when one of them was requested.
func maintain(ctx context.Context, opts *options, kv ports.KVStore, store *notifications.Store, out io.Writer) (bool, error) {
	if opts.logout {
		return true, client.ClearIdentity(ctx, kv)
	}
	handled, err := manage(ctx, opts, store)
	if err != nil {
		return true, err
	}
	if handled || opts.list {
		printList(out, store)
		return true, nil
	}
	return false, nil
}

func run(ctx context.Context, opts *options, logger *slog.Logger) error {
	kv, closeKV := openKV(ctx, opts, logger)
	defer closeKV()

	store, err := notifications.Open(ctx, kv, logger)
	if err != nil {
		return err
	}
	if done, err := maintain(ctx, opts, kv, store, os.Stdout); done || err != nil {
		return err
	}

	id, err := identityFromFlags(opts)
	if err != nil {
		return err
	}
	if id != nil {
		if err := client.SaveIdentity(ctx, kv, id); err != nil {
			logger.Warn("failed to store session", "error", err)
		}
	} else {
		stored, ok, err := client.LoadIdentity(ctx, kv)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no stored session: pass --token and --user-id")
		}
		id = stored
	}

	receiver := client.NewReceiver(store, toast(os.Stdout, !opts.quiet), logger)
	receiver.SetLocations(id.Locations)
	session, err := client.NewSession(opts.server, receiver, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.SetIdentity(ctx, id); err != nil {
		return err
	}
	logger.Info("listening for ticket events", "server", opts.server, "unread", store.UnreadCount())

	switch err := session.Wait(ctx); {
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return err
	}
	return errors.New("connection closed by server")
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = opts.logLevel
	logCfg.Format = "text"
	logCfg.Output = os.Stderr
	logCfg.ServiceName = "deskwatch"
	logger := logging.NewLogger(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("deskwatch stopped", "error", err)
		os.Exit(1)
	}
}
