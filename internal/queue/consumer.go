// Package queue contains the background consumer that listens to the
// user.preferences queue and writes one line per event to
// <dir>/preferences.log.
package queue

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    json "github.com/goccy/go-json"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/movies-api/internal/logging"
    "github.com/iliyamo/movies-api/internal/metrics"
)

// StartPreferenceConsumer connects to RabbitMQ, declares the preferences
// queue (durable) and appends each event to dir/preferences.log.  It
// reconnects with exponential backoff until ctx is cancelled, then returns
// ctx.Err().  Messages that fail to process are rejected without requeue
// so a poison message cannot spin the loop.
func StartPreferenceConsumer(ctx context.Context, url, dir string) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            logging.Warn().Err(err).Dur("retry_in", backoff).Msg("preference-consumer: failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, dir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logging.Warn().Err(err).Msg("preference-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logging.Warn().Err(err).Msg("preference-consumer: set QoS failed")
    }

    if _, err := ch.QueueDeclare(PreferencesQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.ConsumeWithContext(ctx, PreferencesQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(dir, d.Body); err != nil {
            logging.Error().Err(err).Msg("preference-consumer: handle message failed")
            metrics.PreferenceEvents.WithLabelValues("rejected").Inc()
            _ = d.Nack(false, false)
            continue
        }
        metrics.PreferenceEvents.WithLabelValues("consumed").Inc()
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(dir string, body []byte) error {
    var ev PreferenceChangedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Email == "" || ev.MovieID == 0 {
        return errors.New("event missing email or movie_id")
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "preferences.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev PreferenceChangedEvent) string {
    return fmt.Sprintf("[%s] Preference %s | email=%s | list=%s | movie_id=%d | size=%d\n",
        ev.At, ev.Action, ev.Email, ev.List, ev.MovieID, ev.ListSize)
}
