// internal/acquire/email.go
package acquire

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

var feedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
	".tsv":  true,
}

// SeenStore remembers which (message-id, content-hash) pairs were already
// harvested. Clearing it re-enables processing of the same messages.
type SeenStore interface {
	Seen(key string) bool
	Mark(key string)
	Clear()
}

// MemorySeenStore is the in-process SeenStore.
type MemorySeenStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{keys: make(map[string]bool)}
}

func (s *MemorySeenStore) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key]
}

func (s *MemorySeenStore) Mark(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
}

func (s *MemorySeenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]bool)
}

// EmailFetcher pulls feed files from an IMAP mailbox: unread messages
// matching the source's sender allowlist and subject filter, attachments by
// extension, plus body links when configured.
type EmailFetcher struct {
	links *URLFetcher
	seen  SeenStore
}

func NewEmailFetcher(links *URLFetcher, seen SeenStore) *EmailFetcher {
	if seen == nil {
		seen = NewMemorySeenStore()
	}
	return &EmailFetcher{links: links, seen: seen}
}

// Fetch harvests all matching mail. An empty result with a nil error means
// no matching message arrived yet; the retry queue decides what happens.
func (f *EmailFetcher) Fetch(ctx context.Context, source *domain.Source) ([]domain.FeedFile, error) {
	cfg := source.Email
	if cfg == nil || cfg.Host == "" {
		return nil, &domain.ConfigError{SourceID: source.ID, Reason: "email source has no imap settings"}
	}

	c, err := f.dial(cfg)
	if err != nil {
		return nil, &domain.AcquisitionError{SourceID: source.ID, Channel: "email", Err: err}
	}
	defer c.Logout()

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		return nil, &domain.AcquisitionError{SourceID: source.ID, Channel: "email", Err: fmt.Errorf("login: %w", err)}
	}

	folder := cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := c.Select(folder, false); err != nil {
		return nil, &domain.AcquisitionError{SourceID: source.ID, Channel: "email", Err: fmt.Errorf("select %s: %w", folder, err)}
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, &domain.AcquisitionError{SourceID: source.ID, Channel: "email", Err: fmt.Errorf("search: %w", err)}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var files []domain.FeedFile
	matched := new(imap.SeqSet)
	for msg := range messages {
		if !f.messageMatches(msg, cfg) {
			continue
		}
		harvested, err := f.harvest(ctx, msg, section, cfg)
		if err != nil {
			logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("could not read message")
			continue
		}
		if len(harvested) == 0 {
			continue
		}
		files = append(files, harvested...)
		matched.AddNum(msg.SeqNum)
	}
	if err := <-done; err != nil {
		return nil, &domain.AcquisitionError{SourceID: source.ID, Channel: "email", Err: fmt.Errorf("fetch: %w", err)}
	}

	if !matched.Empty() {
		f.finalize(c, matched, cfg)
	}
	return files, nil
}

func (f *EmailFetcher) dial(cfg *domain.EmailSettings) (*client.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	if cfg.Secure {
		return client.DialTLS(addr, nil)
	}
	return client.Dial(addr)
}

func (f *EmailFetcher) messageMatches(msg *imap.Message, cfg *domain.EmailSettings) bool {
	if msg.Envelope == nil {
		return false
	}
	if cfg.SubjectFilter != "" &&
		!strings.Contains(strings.ToLower(msg.Envelope.Subject), strings.ToLower(cfg.SubjectFilter)) {
		return false
	}
	if len(cfg.SenderWhitelist) == 0 {
		return true
	}
	for _, from := range msg.Envelope.From {
		sender := strings.ToLower(from.MailboxName + "@" + from.HostName)
		for _, allowed := range cfg.SenderWhitelist {
			if strings.Contains(sender, strings.ToLower(strings.TrimSpace(allowed))) {
				return true
			}
		}
	}
	return false
}

// harvest walks one message's MIME parts for feed attachments and,
// optionally, body links. Already-seen (message-id, content-hash) pairs are
// skipped.
func (f *EmailFetcher) harvest(ctx context.Context, msg *imap.Message, section *imap.BodySectionName, cfg *domain.EmailSettings) ([]domain.FeedFile, error) {
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no body", msg.SeqNum)
	}
	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("open message: %w", err)
	}

	messageID := ""
	if msg.Envelope != nil {
		messageID = msg.Envelope.MessageId
	}

	var files []domain.FeedFile
	var bodyText strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}
		switch header := part.Header.(type) {
		case *mail.AttachmentHeader:
			filename, _ := header.Filename()
			if !feedExtensions[strings.ToLower(filepath.Ext(filename))] {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read attachment %s: %w", filename, err)
			}
			if file, ok := f.dedupe(messageID, domain.FeedFile{Name: filename, Data: data}); ok {
				files = append(files, file)
			}
		case *mail.InlineHeader:
			text, err := io.ReadAll(part.Body)
			if err == nil {
				bodyText.Write(text)
			}
		}
	}

	if cfg.ExtractLinksFromBody && f.links != nil {
		for _, link := range ExtractLinks(bodyText.String()) {
			file, err := f.links.download(ctx, link)
			if err != nil {
				logger.Log.Warn().Err(err).Str("link", link).Msg("body link download failed")
				continue
			}
			if deduped, ok := f.dedupe(messageID, file); ok {
				files = append(files, deduped)
			}
		}
	}
	return files, nil
}

func (f *EmailFetcher) dedupe(messageID string, file domain.FeedFile) (domain.FeedFile, bool) {
	sum := sha256.Sum256(file.Data)
	key := messageID + "|" + hex.EncodeToString(sum[:])
	if f.seen.Seen(key) {
		return domain.FeedFile{}, false
	}
	f.seen.Mark(key)
	return file, true
}

// finalize applies the per-source message disposition to every harvested
// message.
func (f *EmailFetcher) finalize(c *client.Client, matched *imap.SeqSet, cfg *domain.EmailSettings) {
	if cfg.DeleteAfterDownload {
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := c.Store(matched, item, []interface{}{imap.DeletedFlag}, nil); err != nil {
			logger.Log.Warn().Err(err).Msg("could not flag messages deleted")
			return
		}
		if err := c.Expunge(nil); err != nil {
			logger.Log.Warn().Err(err).Msg("could not expunge mailbox")
		}
		return
	}
	if cfg.MarkAsRead {
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := c.Store(matched, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			logger.Log.Warn().Err(err).Msg("could not mark messages read")
		}
	}
}
