package editor

import (
	"sync"
	"time"

	"github.com/refina/finance_client/session"
)

// LocalFile is a newly selected file staged for upload. Content is held in
// memory so the same file can be uploaded once per transaction leg.
type LocalFile struct {
	Name string
	Data []byte
}

// Attachment is one staged item: either a pre-existing remote reference or a
// local file pending upload, never both.
type Attachment struct {
	Remote string
	Local  *LocalFile
}

func (a Attachment) IsLocal() bool {
	return a.Local != nil
}

// Stager owns the ordered attachment list of the in-progress form. Its clear
// signal is one-shot: consumers act on the false→true edge and the signal
// reverts itself after clearInterval so a later clear can fire again.
type Stager struct {
	mu            sync.Mutex
	items         []Attachment
	clearRaised   bool
	clearInterval time.Duration
	revert        *time.Timer
	store         *session.Store
}

func NewStager() *Stager {
	return &Stager{
		clearInterval: time.Second,
		store:         session.NewStore(),
	}
}

// SetClearInterval overrides the signal revert delay. Used by tests.
func (s *Stager) SetClearInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearInterval = d
}

// Add appends newly selected local files to the list. It never replaces
// already-staged items.
func (s *Stager) Add(files ...*LocalFile) {
	s.mu.Lock()
	for _, file := range files {
		s.items = append(s.items, Attachment{Local: file})
	}
	s.mu.Unlock()

	s.store.Notify()
}

// Hydrate seeds the list from the remote references of a fetched detail.
func (s *Stager) Hydrate(refs []string) {
	items := make([]Attachment, 0, len(refs))
	for _, ref := range refs {
		items = append(items, Attachment{Remote: ref})
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.store.Notify()
}

func (s *Stager) Items() []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// LocalFiles returns the staged files that still need uploading.
func (s *Stager) LocalFiles() []*LocalFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := []*LocalFile{}
	for _, item := range s.items {
		if item.IsLocal() {
			files = append(files, item.Local)
		}
	}
	return files
}

// Clear empties the list and raises the one-shot signal. A repeated clear
// while the signal is still up just restarts the revert timer.
func (s *Stager) Clear() {
	s.mu.Lock()
	s.items = nil
	s.clearRaised = true
	if s.revert != nil {
		s.revert.Stop()
	}
	s.revert = time.AfterFunc(s.clearInterval, s.revertClear)
	s.mu.Unlock()

	s.store.Notify()
}

func (s *Stager) revertClear() {
	s.mu.Lock()
	s.clearRaised = false
	s.revert = nil
	s.mu.Unlock()

	s.store.Notify()
}

func (s *Stager) ClearSignal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearRaised
}

// Reset discards the list and the pending signal without notifying. Used when
// the panel closes and ownership of the list ends.
func (s *Stager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.clearRaised = false
	if s.revert != nil {
		s.revert.Stop()
		s.revert = nil
	}
}

// Subscribe registers a callback fired on every stager change, including both
// edges of the clear signal.
func (s *Stager) Subscribe(fn func()) func() {
	return s.store.Subscribe(fn)
}
