package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type txKey struct{}

// fakeTransactor serializes transactions, which is enough to stand in for
// the row locks the real repositories take.
type fakeTransactor struct {
	mu sync.Mutex
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

type publishedEvent struct {
	topic string
	key   string
	event interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *fakePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
	n     int
}

func (s *sequenceCodes) NewCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n < len(s.codes) {
		c := s.codes[s.n]
		s.n++
		return c, nil
	}
	s.n++
	return fmt.Sprintf("CODE%04d", s.n), nil
}

// memStore is an in-memory implementation of every repository port. Reads
// hand out copies so callers must save explicitly, as with a database.
type memStore struct {
	mu sync.Mutex

	codes     map[string]*domain.ReferralCode
	referrals []*domain.Referral

	earnings    []*domain.ReferralEarning
	earningKeys map[string]bool
	balances    map[string]*domain.AffiliateBalance

	payouts map[string]*domain.Payout
	rewards []*domain.Reward

	suspects   []*domain.FraudSuspect
	activities []*domain.FraudActivity
}

func newMemStore() *memStore {
	return &memStore{
		codes:       map[string]*domain.ReferralCode{},
		earningKeys: map[string]bool{},
		balances:    map[string]*domain.AffiliateBalance{},
		payouts:     map[string]*domain.Payout{},
	}
}

// ============= ReferralRepository =============

func (s *memStore) CreateReferralCode(_ context.Context, code *domain.ReferralCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code.Code]; ok {
		return fmt.Errorf("%w: referral code taken", domain.ErrConflict)
	}
	for _, c := range s.codes {
		if c.UserID == code.UserID && c.IsActive {
			return fmt.Errorf("%w: user already has an active code", domain.ErrConflict)
		}
	}
	c := *code
	s.codes[code.Code] = &c
	return nil
}

func (s *memStore) GetReferralCodeByCode(_ context.Context, code string) (*domain.ReferralCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, domain.ErrReferralCodeNotFound
	}
	out := *c
	return &out, nil
}

func (s *memStore) GetActiveReferralCodeByUser(_ context.Context, userID string) (*domain.ReferralCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.UserID == userID && c.IsActive {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrReferralCodeNotFound
}

func (s *memStore) ReferralCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.codes[code]
	return ok, nil
}

func (s *memStore) DeactivateReferralCode(_ context.Context, codeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.ID == codeID {
			c.IsActive = false
			return nil
		}
	}
	return domain.ErrReferralCodeNotFound
}

func (s *memStore) DeactivateExpiredCodes(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.codes {
		if c.IsActive && c.IsExpired(now) {
			c.IsActive = false
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateReferral(_ context.Context, referral *domain.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.referrals {
		if r.ReferredID == referral.ReferredID {
			return domain.ErrAlreadyReferred
		}
	}
	r := *referral
	s.referrals = append(s.referrals, &r)
	return nil
}

func (s *memStore) findReferral(match func(*domain.Referral) bool) (*domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.referrals {
		if match(r) {
			out := *r
			return &out, nil
		}
	}
	return nil, domain.ErrReferralNotFound
}

func (s *memStore) GetReferralByID(_ context.Context, referralID string) (*domain.Referral, error) {
	return s.findReferral(func(r *domain.Referral) bool { return r.ID == referralID })
}

func (s *memStore) GetReferralByIDForUpdate(ctx context.Context, referralID string) (*domain.Referral, error) {
	return s.GetReferralByID(ctx, referralID)
}

func (s *memStore) GetReferralByReferredID(_ context.Context, referredID string) (*domain.Referral, error) {
	return s.findReferral(func(r *domain.Referral) bool { return r.ReferredID == referredID })
}

func (s *memStore) GetReferralByReferredIDForUpdate(ctx context.Context, referredID string) (*domain.Referral, error) {
	return s.GetReferralByReferredID(ctx, referredID)
}

func (s *memStore) ListReferralsByReferrer(_ context.Context, referrerID string) ([]*domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Referral
	for _, r := range s.referrals {
		if r.ReferrerID == referrerID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) SaveReferralStatus(_ context.Context, referral *domain.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.referrals {
		if r.ID == referral.ID {
			r.Status = referral.Status
			r.CompletedAt = referral.CompletedAt
			r.RewardedAt = referral.RewardedAt
			r.UpdatedAt = referral.UpdatedAt
			return nil
		}
	}
	return domain.ErrReferralNotFound
}

// addReferral seeds a referral edge directly.
func (s *memStore) addReferral(r *domain.Referral) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referrals = append(s.referrals, r)
}

// ============= EarningRepository =============

func (s *memStore) AppendEarnings(_ context.Context, earnings []*domain.ReferralEarning) ([]*domain.ReferralEarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inserted []*domain.ReferralEarning
	for _, e := range earnings {
		key := fmt.Sprintf("%s/%d/%s", e.ReferralID, e.Tier, e.TransactionID)
		if s.earningKeys[key] {
			continue
		}
		s.earningKeys[key] = true
		c := *e
		s.earnings = append(s.earnings, &c)
		inserted = append(inserted, e)
	}
	return inserted, nil
}

func (s *memStore) SummarizeEarnings(_ context.Context, earnerID string, from, to *time.Time) ([]*domain.TierEarnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := map[int]*domain.TierEarnings{}
	seen := map[int]map[string]bool{}
	for _, e := range s.earnings {
		if e.EarnerID != earnerID {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		t, ok := totals[e.Tier]
		if !ok {
			t = &domain.TierEarnings{Tier: e.Tier, Total: decimal.Zero}
			totals[e.Tier] = t
			seen[e.Tier] = map[string]bool{}
		}
		t.Total = t.Total.Add(e.Amount)
		if !seen[e.Tier][e.ReferralID] {
			seen[e.Tier][e.ReferralID] = true
			t.Referrals++
		}
	}
	out := make([]*domain.TierEarnings, 0, len(totals))
	for _, t := range totals {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out, nil
}

func (s *memStore) earningsFor(earnerID string) []*domain.ReferralEarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ReferralEarning
	for _, e := range s.earnings {
		if e.EarnerID == earnerID {
			out = append(out, e)
		}
	}
	return out
}

// ============= BalanceRepository =============

func (s *memStore) GetBalance(_ context.Context, affiliateID string) (*domain.AffiliateBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[affiliateID]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}
	out := *b
	return &out, nil
}

func (s *memStore) AddEarnings(_ context.Context, affiliateID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[affiliateID]
	if !ok {
		b = &domain.AffiliateBalance{AffiliateID: affiliateID}
		s.balances[affiliateID] = b
	}
	b.AvailableBalance = b.AvailableBalance.Add(amount)
	b.TotalEarned = b.TotalEarned.Add(amount)
	return nil
}

func (s *memStore) Debit(_ context.Context, affiliateID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[affiliateID]
	if !ok || b.AvailableBalance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	b.AvailableBalance = b.AvailableBalance.Sub(amount)
	b.TotalWithdrawn = b.TotalWithdrawn.Add(amount)
	return nil
}

func (s *memStore) Refund(_ context.Context, affiliateID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[affiliateID]
	if !ok {
		return domain.ErrBalanceNotFound
	}
	b.AvailableBalance = b.AvailableBalance.Add(amount)
	b.TotalWithdrawn = b.TotalWithdrawn.Sub(amount)
	return nil
}

func (s *memStore) available(affiliateID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[affiliateID]; ok {
		return b.AvailableBalance
	}
	return decimal.Zero
}

// ============= PayoutRepository =============

func (s *memStore) CreatePayout(_ context.Context, payout *domain.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *payout
	s.payouts[payout.ID] = &p
	return nil
}

func (s *memStore) GetPayoutByIDForUpdate(_ context.Context, payoutID string) (*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[payoutID]
	if !ok {
		return nil, domain.ErrPayoutNotFound
	}
	out := *p
	return &out, nil
}

func (s *memStore) UpdatePayout(_ context.Context, payout *domain.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[payout.ID]; !ok {
		return domain.ErrPayoutNotFound
	}
	p := *payout
	s.payouts[payout.ID] = &p
	return nil
}

func (s *memStore) ListPayoutsByAffiliate(_ context.Context, affiliateID string) ([]*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Payout
	for _, p := range s.payouts {
		if p.AffiliateID == affiliateID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// ============= RewardRepository =============

func (s *memStore) CreateReward(_ context.Context, reward *domain.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reward.ReferralID != nil {
		for _, r := range s.rewards {
			if r.ReferralID != nil && *r.ReferralID == *reward.ReferralID && r.UserID == reward.UserID {
				return fmt.Errorf("%w: reward already issued", domain.ErrConflict)
			}
		}
	}
	r := *reward
	s.rewards = append(s.rewards, &r)
	return nil
}

func (s *memStore) GetRewardByIDForUpdate(_ context.Context, rewardID string) (*domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rewards {
		if r.ID == rewardID {
			out := *r
			return &out, nil
		}
	}
	return nil, domain.ErrRewardNotFound
}

func (s *memStore) UpdateReward(_ context.Context, reward *domain.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rewards {
		if r.ID == reward.ID {
			c := *reward
			s.rewards[i] = &c
			return nil
		}
	}
	return domain.ErrRewardNotFound
}

func (s *memStore) ListRewardsByUser(_ context.Context, userID string) ([]*domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Reward
	for _, r := range s.rewards {
		if r.UserID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) ExpirePendingRewardsByUser(_ context.Context, userID string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.rewards {
		if r.UserID == userID && r.Status == domain.RewardPending {
			r.Status = domain.RewardExpired
			r.ExpiredAt = &now
			n++
		}
	}
	return n, nil
}

func (s *memStore) ExpireStaleRewards(_ context.Context, createdBefore, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.rewards {
		if r.Status == domain.RewardPending && r.CreatedAt.Before(createdBefore) {
			r.Status = domain.RewardExpired
			r.ExpiredAt = &now
			n++
		}
	}
	return n, nil
}

// ============= FraudRepository =============

func (s *memStore) FindSuspectsByIPOrDevice(_ context.Context, ipAddress, deviceFingerprint string) ([]*domain.FraudSuspect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.FraudSuspect
	for _, sp := range s.suspects {
		if (ipAddress != "" && sp.IPAddress == ipAddress) ||
			(deviceFingerprint != "" && sp.DeviceFingerprint == deviceFingerprint) {
			c := *sp
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) GetSuspectByUserID(_ context.Context, userID string) (*domain.FraudSuspect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.suspects) - 1; i >= 0; i-- {
		if s.suspects[i].UserID == userID {
			out := *s.suspects[i]
			return &out, nil
		}
	}
	return nil, domain.ErrSuspectNotFound
}

func (s *memStore) GetSuspectByIDForUpdate(_ context.Context, suspectID string) (*domain.FraudSuspect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.suspects {
		if sp.ID == suspectID {
			out := *sp
			return &out, nil
		}
	}
	return nil, domain.ErrSuspectNotFound
}

func (s *memStore) CreateSuspect(_ context.Context, suspect *domain.FraudSuspect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *suspect
	s.suspects = append(s.suspects, &c)
	return nil
}

func (s *memStore) UpdateSuspect(_ context.Context, suspect *domain.FraudSuspect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sp := range s.suspects {
		if sp.ID == suspect.ID {
			c := *suspect
			s.suspects[i] = &c
			return nil
		}
	}
	return domain.ErrSuspectNotFound
}

func (s *memStore) ListSuspects(_ context.Context, status *domain.SuspectStatus) ([]*domain.FraudSuspect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.FraudSuspect
	for _, sp := range s.suspects {
		if status == nil || sp.Status == *status {
			c := *sp
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) HasOpenSuspicion(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.suspects {
		if sp.UserID == userID && (sp.Status == domain.SuspectPending || sp.Status == domain.SuspectConfirmed) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateActivity(_ context.Context, activity *domain.FraudActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *activity
	s.activities = append(s.activities, &c)
	return nil
}

func (s *memStore) HasActivityNamingUser(_ context.Context, activityType, relatedUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.activities {
		if a.Type == activityType && a.RelatedUserID == relatedUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CountActivitiesByType(_ context.Context, since time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, a := range s.activities {
		if !a.CreatedAt.Before(since) {
			out[a.Type]++
		}
	}
	return out, nil
}
