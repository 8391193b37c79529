package service

import (
	"context"
	"sort"
	"sync"
	"time"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

const testSignerKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakeUserCache struct {
	mu    sync.Mutex
	users map[int64]models.CachedUser
	puts  int
}

func newFakeUserCache() *fakeUserCache {
	return &fakeUserCache{users: map[int64]models.CachedUser{}}
}

func (f *fakeUserCache) Get(_ context.Context, fid int64) (*models.CachedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cached, ok := f.users[fid]
	if !ok {
		return nil, nil
	}
	return &cached, nil
}

func (f *fakeUserCache) Put(_ context.Context, user *models.FarcasterUser, cachedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.users[user.Fid] = models.CachedUser{Fid: user.Fid, UserData: *user, CachedAt: cachedAt}
	return nil
}

type fakeFetcher struct {
	users map[int64]models.FarcasterUser
	calls int
	err   error
}

func (f *fakeFetcher) FetchUser(_ context.Context, fid int64) (*models.FarcasterUser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[fid]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "User not found")
	}
	return &user, nil
}

func (f *fakeFetcher) FetchUsers(_ context.Context, fids []int64) ([]models.FarcasterUser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	users := make([]models.FarcasterUser, 0, len(fids))
	for _, fid := range fids {
		if user, ok := f.users[fid]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// fakeScores keeps game records in memory. Methods a test does not need
// panic through the embedded interface.
type fakeScores struct {
	repository.GameScoreRepository
	records map[int64]*models.GameScore
	puts    int
}

func newFakeScores(records ...models.GameScore) *fakeScores {
	f := &fakeScores{records: map[int64]*models.GameScore{}}
	for i := range records {
		record := records[i]
		f.records[record.Fid] = &record
	}
	return f
}

func (f *fakeScores) Get(_ context.Context, fid int64) (*models.GameScore, error) {
	record, ok := f.records[fid]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "game score not found")
	}
	copied := *record
	return &copied, nil
}

func (f *fakeScores) UpdateScore(_ context.Context, score *models.GameScore) error {
	f.puts++
	copied := *score
	f.records[score.Fid] = &copied
	return nil
}

func (f *fakeScores) SeasonLeaderboard(_ context.Context, _ int) ([]models.GameScore, error) {
	scores := make([]models.GameScore, 0, len(f.records))
	for _, record := range f.records {
		if record.HasSeasonScore {
			scores = append(scores, *record)
		}
	}
	return scores, nil
}

func (f *fakeScores) ListByAddress(_ context.Context, address string) ([]models.GameScore, error) {
	scores := make([]models.GameScore, 0)
	for _, record := range f.records {
		if models.NormalizeAddress(record.UserAddress) == models.NormalizeAddress(address) {
			scores = append(scores, *record)
		}
	}
	return scores, nil
}

func (f *fakeScores) ListWithoutSeasonScore(_ context.Context) ([]models.GameScore, error) {
	scores := make([]models.GameScore, 0)
	for _, record := range f.records {
		if !record.HasSeasonScore {
			scores = append(scores, *record)
		}
	}
	return scores, nil
}

type recordedClaim struct {
	fid      int64
	observed repository.GiftBoxWindow
	next     repository.GiftBoxWindow
	claim    *models.GiftBoxClaim
}

// fakeGiftBoxes applies claims to the shared fakeScores and enforces the
// same observed-window condition as the table.
type fakeGiftBoxes struct {
	scores   *fakeScores
	recorded []recordedClaim
	conflict bool
}

func (f *fakeGiftBoxes) RecordClaim(_ context.Context, fid int64, observed, next repository.GiftBoxWindow, claim *models.GiftBoxClaim) error {
	if f.conflict {
		return errors.New(errors.CodeConflict, "gift box window changed")
	}

	record, ok := f.scores.records[fid]
	switch {
	case !observed.Exists && ok:
		return errors.New(errors.CodeConflict, "gift box window changed")
	case observed.Exists && (!ok || record.LastGiftBoxUpdate != observed.LastUpdate ||
		record.GiftBoxClaimsInPeriod != observed.ClaimsInPeriod):
		return errors.New(errors.CodeConflict, "gift box window changed")
	}

	if !ok {
		record = &models.GameScore{Fid: fid}
		f.scores.records[fid] = record
	}
	record.LastGiftBoxUpdate = next.LastUpdate
	record.GiftBoxClaimsInPeriod = next.ClaimsInPeriod
	record.TotalRewardsClaimed++

	f.recorded = append(f.recorded, recordedClaim{fid: fid, observed: observed, next: next, claim: claim})
	return nil
}

func (f *fakeGiftBoxes) ListClaims(_ context.Context, address string) ([]models.GiftBoxClaim, error) {
	claims := make([]models.GiftBoxClaim, 0, len(f.recorded))
	for _, r := range f.recorded {
		if models.NormalizeAddress(r.claim.UserAddress) == models.NormalizeAddress(address) {
			claims = append(claims, *r.claim)
		}
	}
	return claims, nil
}

type fakeLeaderboardRepo struct {
	entries  map[int64]models.LeaderboardEntry
	topCalls int
}

func (f *fakeLeaderboardRepo) Upsert(_ context.Context, entry *models.LeaderboardEntry) error {
	f.entries[entry.Fid] = *entry
	return nil
}

func (f *fakeLeaderboardRepo) Top(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.topCalls++
	entries := make([]models.LeaderboardEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		entries = append(entries, entry)
	}
	sortEntries(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func sortEntries(entries []models.LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TotalIncrements > entries[j].TotalIncrements
	})
}

type fakeLeaderboardCache struct {
	entries     []models.LeaderboardEntry
	cached      bool
	invalidated int
	getErr      error
}

func (f *fakeLeaderboardCache) Get(_ context.Context) ([]models.LeaderboardEntry, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.entries, f.cached, nil
}

func (f *fakeLeaderboardCache) Set(_ context.Context, entries []models.LeaderboardEntry) error {
	f.entries = entries
	f.cached = true
	return nil
}

func (f *fakeLeaderboardCache) Invalidate(_ context.Context) error {
	f.entries = nil
	f.cached = false
	f.invalidated++
	return nil
}

type fakePublisher struct {
	mu         sync.Mutex
	leaderboards []*models.LeaderboardEntry
	signatures   []commonevents.SignatureIssuedEvent
	giftBoxes    []*models.GiftBoxClaim
	scores       []commonevents.GameScoreSavedEvent
	webhooks     []commonevents.MiniAppWebhookEvent
	err          error
}

func (f *fakePublisher) PublishLeaderboardUpdated(_ context.Context, entry *models.LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaderboards = append(f.leaderboards, entry)
	return f.err
}

func (f *fakePublisher) PublishSignatureIssued(_ context.Context, event commonevents.SignatureIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signatures = append(f.signatures, event)
	return f.err
}

func (f *fakePublisher) PublishGiftBoxClaimed(_ context.Context, claim *models.GiftBoxClaim, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.giftBoxes = append(f.giftBoxes, claim)
	return f.err
}

func (f *fakePublisher) PublishGameScoreSaved(_ context.Context, event commonevents.GameScoreSavedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, event)
	return f.err
}

func (f *fakePublisher) PublishWebhookReceived(_ context.Context, event commonevents.MiniAppWebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks = append(f.webhooks, event)
	return f.err
}

type fakeAuthKeys struct {
	stored map[string]models.UsedAuthKey
	cutoff int64
}

func (f *fakeAuthKeys) Store(_ context.Context, key *models.UsedAuthKey) error {
	if _, ok := f.stored[key.FusedKey]; ok {
		return errors.New(errors.CodeAlreadyExists, "auth key already used")
	}
	f.stored[key.FusedKey] = *key
	return nil
}

func (f *fakeAuthKeys) DeleteOlderThan(_ context.Context, cutoffMilli int64) (int, error) {
	f.cutoff = cutoffMilli
	deleted := 0
	for k, v := range f.stored {
		if v.Timestamp < cutoffMilli {
			delete(f.stored, k)
			deleted++
		}
	}
	return deleted, nil
}

type fakeNotifications struct {
	details map[int64]models.NotificationDetails
}

func (f *fakeNotifications) Get(_ context.Context, fid int64) (*models.NotificationDetails, error) {
	d, ok := f.details[fid]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeNotifications) Set(_ context.Context, fid int64, details models.NotificationDetails) error {
	f.details[fid] = details
	return nil
}

func (f *fakeNotifications) Delete(_ context.Context, fid int64) error {
	delete(f.details, fid)
	return nil
}

type countingRecorder struct {
	cache  map[string]int
	signed map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{cache: map[string]int{}, signed: map[string]int{}}
}

func (r *countingRecorder) RecordCache(cache, result string) {
	r.cache[cache+"/"+result]++
}

func (r *countingRecorder) RecordRewardSigned(source, token string) {
	r.signed[source+"/"+token]++
}
