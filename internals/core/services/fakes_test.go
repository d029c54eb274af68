package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/cloudinary"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
)

// memoryStore implements every repository interface over maps. nextErr injects a
// one-shot failure for the named method.
type memoryStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*models.User
	vendors       map[uuid.UUID]*models.Vendor
	products      map[uuid.UUID]*models.Product
	classifieds   map[uuid.UUID]*models.Classified
	follows       []models.Follow
	favorites     []models.Favorite
	conversations map[uuid.UUID]*models.Conversation
	messages      []*models.Message
	coupons       map[uuid.UUID]*models.Coupon
	redemptions   []models.CouponRedemption
	notifications []models.Notification
	payments      map[string]*models.Payment

	nextErr map[string]error

	// beforeCreateConversation runs under the lock ahead of the insert.
	beforeCreateConversation func(*memoryStore)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[uuid.UUID]*models.User),
		vendors:       make(map[uuid.UUID]*models.Vendor),
		products:      make(map[uuid.UUID]*models.Product),
		classifieds:   make(map[uuid.UUID]*models.Classified),
		conversations: make(map[uuid.UUID]*models.Conversation),
		coupons:       make(map[uuid.UUID]*models.Coupon),
		payments:      make(map[string]*models.Payment),
		nextErr:       make(map[string]error),
	}
}

func (s *memoryStore) setErr(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr[op] = err
}

func (s *memoryStore) takeErr(op string) error {
	if err, ok := s.nextErr[op]; ok {
		delete(s.nextErr, op)
		return err
	}
	return nil
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// users

func (s *memoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("CreateUser"); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	newID(&user.ID)
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) GetUsersByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("GetUsersByIDs"); err != nil {
		return nil, err
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memoryStore) UpdateUser(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		}
	}
	return nil
}

func (s *memoryStore) UpdateFCMToken(_ context.Context, id uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FCMToken = token
	return nil
}

// vendors

func (s *memoryStore) CreateVendor(_ context.Context, vendor *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if v.UserID == vendor.UserID {
			return repository.ErrDuplicate
		}
	}
	newID(&vendor.ID)
	cp := *vendor
	s.vendors[vendor.ID] = &cp
	return nil
}

func (s *memoryStore) GetVendorByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("GetVendorByID"); err != nil {
		return nil, err
	}
	v, ok := s.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *memoryStore) GetVendorByUserID(_ context.Context, userID uuid.UUID) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if v.UserID == userID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) UpdateVendor(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, val := range fields {
		switch k {
		case "name":
			v.Name = val.(string)
		case "description":
			v.Description = val.(string)
		case "city":
			v.City = val.(string)
		case "logo_url":
			v.LogoURL = val.(string)
		case "logo_public_id":
			v.LogoPublicID = val.(string)
		}
	}
	return nil
}

func (s *memoryStore) DeleteVendor(_ context.Context, id uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[id]; !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.vendors, id)
	var images []string
	for pid, p := range s.products {
		if p.VendorID == id {
			if p.ImagePublicID != "" {
				images = append(images, p.ImagePublicID)
			}
			delete(s.products, pid)
		}
	}
	return images, nil
}

func (s *memoryStore) ListVendors(_ context.Context, filter repository.VendorFilter) ([]models.Vendor, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vendor
	for _, v := range s.vendors {
		if filter.City != "" && !strings.EqualFold(v.City, filter.City) {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (s *memoryStore) ListFeaturedVendors(_ context.Context, now time.Time, limit int) ([]models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vendor
	for _, v := range s.vendors {
		if v.Featured && v.FeaturedUntil != nil && v.FeaturedUntil.After(now) && len(out) < limit {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *memoryStore) ExpireFeatured(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.vendors {
		if v.Featured && v.FeaturedUntil != nil && !v.FeaturedUntil.After(now) {
			v.Featured = false
			n++
		}
	}
	return n, nil
}

// products

func (s *memoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&product.ID)
	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *memoryStore) GetProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memoryStore) UpdateProduct(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "price":
			p.Price = v.(float64)
		case "available":
			p.Available = v.(bool)
		case "image_url":
			p.ImageURL = v.(string)
		case "image_public_id":
			p.ImagePublicID = v.(string)
		}
	}
	return nil
}

func (s *memoryStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	kept := s.favorites[:0]
	for _, f := range s.favorites {
		if f.ProductID != id {
			kept = append(kept, f)
		}
	}
	s.favorites = kept
	return nil
}

func (s *memoryStore) ListProducts(_ context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if !filter.IncludeUnavailable && !p.Available {
			continue
		}
		if filter.VendorID != nil && p.VendorID != *filter.VendorID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// classifieds

func (s *memoryStore) CreateClassified(_ context.Context, c *models.Classified) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&c.ID)
	cp := *c
	s.classifieds[c.ID] = &cp
	return nil
}

func (s *memoryStore) GetClassifiedByID(_ context.Context, id uuid.UUID) (*models.Classified, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classifieds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) UpdateClassified(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classifieds[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			c.Title = v.(string)
		case "description":
			c.Description = v.(string)
		case "active":
			c.Active = v.(bool)
		case "expires_at":
			c.ExpiresAt = v.(time.Time)
		}
	}
	return nil
}

func (s *memoryStore) DeleteClassified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classifieds[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.classifieds, id)
	return nil
}

func (s *memoryStore) CountLiveByUser(_ context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.classifieds {
		if c.UserID == userID && c.Live(now) {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) ListLiveClassifieds(_ context.Context, filter repository.ClassifiedFilter) ([]models.Classified, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Classified
	for _, c := range s.classifieds {
		if c.Live(filter.Now) {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memoryStore) ListClassifiedsByUser(_ context.Context, userID uuid.UUID) ([]models.Classified, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Classified
	for _, c := range s.classifieds {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memoryStore) ExpireClassifieds(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.classifieds {
		if c.Active && !c.ExpiresAt.After(now) {
			c.Active = false
			n++
		}
	}
	return n, nil
}

// follows

func (s *memoryStore) Follow(_ context.Context, userID, vendorID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.UserID == userID && f.VendorID == vendorID {
			return 0, repository.ErrDuplicate
		}
	}
	v, ok := s.vendors[vendorID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	s.follows = append(s.follows, models.Follow{ID: uuid.New(), UserID: userID, VendorID: vendorID, CreatedAt: time.Now()})
	v.FollowersCount++
	return v.FollowersCount, nil
}

func (s *memoryStore) Unfollow(_ context.Context, userID, vendorID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.follows {
		if f.UserID == userID && f.VendorID == vendorID {
			s.follows = append(s.follows[:i], s.follows[i+1:]...)
			v := s.vendors[vendorID]
			if v.FollowersCount > 0 {
				v.FollowersCount--
			}
			return v.FollowersCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (s *memoryStore) IsFollowing(_ context.Context, userID, vendorID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.follows {
		if f.UserID == userID && f.VendorID == vendorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) ListFollowedVendors(_ context.Context, userID uuid.UUID) ([]models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vendor
	for _, f := range s.follows {
		if f.UserID == userID {
			if v, ok := s.vendors[f.VendorID]; ok {
				out = append(out, *v)
			}
		}
	}
	return out, nil
}

func (s *memoryStore) ListFollowerIDs(_ context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("ListFollowerIDs"); err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for _, f := range s.follows {
		if f.VendorID == vendorID {
			out = append(out, f.UserID)
		}
	}
	return out, nil
}

// favorites

func (s *memoryStore) AddFavorite(_ context.Context, userID, productID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return 0, repository.ErrDuplicate
		}
	}
	p, ok := s.products[productID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	s.favorites = append(s.favorites, models.Favorite{ID: uuid.New(), UserID: userID, ProductID: productID})
	p.FavoritesCount++
	return p.FavoritesCount, nil
}

func (s *memoryStore) RemoveFavorite(_ context.Context, userID, productID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.favorites {
		if f.UserID == userID && f.ProductID == productID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			p := s.products[productID]
			if p.FavoritesCount > 0 {
				p.FavoritesCount--
			}
			return p.FavoritesCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (s *memoryStore) IsFavorite(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) ListFavoriteProducts(_ context.Context, userID uuid.UUID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, f := range s.favorites {
		if f.UserID == userID {
			if p, ok := s.products[f.ProductID]; ok {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

// chat

func (s *memoryStore) FindConversation(_ context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	one, two := models.CanonicalPair(a, b)
	for _, c := range s.conversations {
		if c.ParticipantOneID == one && c.ParticipantTwoID == two {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) CreateConversation(_ context.Context, c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("CreateConversation"); err != nil {
		return err
	}
	if s.beforeCreateConversation != nil {
		s.beforeCreateConversation(s)
	}
	c.ParticipantOneID, c.ParticipantTwoID = models.CanonicalPair(c.ParticipantOneID, c.ParticipantTwoID)
	for _, existing := range s.conversations {
		if existing.ParticipantOneID == c.ParticipantOneID && existing.ParticipantTwoID == c.ParticipantTwoID {
			return repository.ErrDuplicate
		}
	}
	newID(&c.ID)
	c.CreatedAt = time.Now()
	cp := *c
	s.conversations[c.ID] = &cp
	return nil
}

func (s *memoryStore) GetConversationByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) ListConversations(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return out, nil
}

func (s *memoryStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[m.ConversationID]
	if !ok {
		return repository.ErrNotFound
	}
	newID(&m.ID)
	cp := *m
	s.messages = append(s.messages, &cp)
	at := m.CreatedAt
	c.LastMessage = m.Content
	c.LastMessageAt = &at
	return nil
}

func (s *memoryStore) ListMessages(_ context.Context, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := s.messages[i]
		if m.ConversationID != conversationID {
			continue
		}
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *memoryStore) MarkConversationRead(_ context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && !m.Read {
			m.Read = true
			t := at
			m.ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) unreadFor(userID uuid.UUID) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64)
	for _, m := range s.messages {
		c := s.conversations[m.ConversationID]
		if c.HasParticipant(userID) && m.SenderID != userID && !m.Read {
			out[m.ConversationID]++
		}
	}
	return out
}

func (s *memoryStore) UnreadByConversation(_ context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadFor(userID), nil
}

func (s *memoryStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, n := range s.unreadFor(userID) {
		total += n
	}
	return total, nil
}

// coupons

func (s *memoryStore) CreateCoupon(_ context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("CreateCoupon"); err != nil {
		return err
	}
	for _, existing := range s.coupons {
		if existing.Code == c.Code {
			return repository.ErrDuplicate
		}
	}
	newID(&c.ID)
	cp := *c
	s.coupons[c.ID] = &cp
	return nil
}

func (s *memoryStore) GetCouponByID(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) GetCouponByCode(_ context.Context, code string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) DeleteCoupon(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.coupons, id)
	return nil
}

func (s *memoryStore) ListCouponsByVendor(_ context.Context, vendorID uuid.UUID) ([]models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Coupon
	for _, c := range s.coupons {
		if c.VendorID == vendorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memoryStore) ListActiveCoupons(_ context.Context, now time.Time, _ repository.Pagination) ([]models.Coupon, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Coupon
	for _, c := range s.coupons {
		if !c.Expired(now) && !c.Exhausted() {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memoryStore) Redeem(_ context.Context, couponID, userID uuid.UUID) (*models.CouponRedemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[couponID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if c.Exhausted() {
		return nil, repository.ErrLimitReached
	}
	for _, r := range s.redemptions {
		if r.CouponID == couponID && r.UserID == userID {
			return nil, repository.ErrDuplicate
		}
	}
	r := models.CouponRedemption{ID: uuid.New(), CouponID: couponID, UserID: userID}
	s.redemptions = append(s.redemptions, r)
	c.RedemptionsCount++
	return &r, nil
}

// notifications

func (s *memoryStore) CreateNotifications(_ context.Context, ns []models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("CreateNotifications"); err != nil {
		return err
	}
	for _, n := range ns {
		newID(&n.ID)
		s.notifications = append(s.notifications, n)
	}
	return nil
}

func (s *memoryStore) ListNotifications(_ context.Context, userID uuid.UUID, _ repository.Pagination) ([]models.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memoryStore) CountUnreadNotifications(userID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, nt := range s.notifications {
		if nt.UserID == userID && !nt.Read {
			n++
		}
	}
	return n
}

func (s *memoryStore) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memoryStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].Read {
			s.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) DeleteNotification(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id && n.UserID == userID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// payments

func (s *memoryStore) CreatePayment(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID(&p.ID)
	cp := *p
	s.payments[p.SessionID] = &cp
	return nil
}

func (s *memoryStore) GetPaymentBySession(_ context.Context, sessionID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// CompletePayment applies all of its writes or none, like the gorm transaction.
func (s *memoryStore) CompletePayment(_ context.Context, sessionID string, now time.Time, period time.Duration) (*models.Vendor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("CompletePayment"); err != nil {
		return nil, false, err
	}
	p, ok := s.payments[sessionID]
	if !ok || p.Status != models.PaymentPending {
		return nil, false, nil
	}
	v, ok := s.vendors[p.VendorID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}

	from := now
	if v.FeaturedUntil != nil && v.FeaturedUntil.After(now) {
		from = *v.FeaturedUntil
	}
	until := from.Add(period)
	p.Status = models.PaymentPaid
	v.Featured = true
	v.FeaturedUntil = &until
	cp := *v
	return &cp, true, nil
}

// notificationStore adapts the memory store to NotificationRepository, whose
// CountUnread collides with the chat one.
type notificationStore struct{ *memoryStore }

func (n notificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	return n.CountUnreadNotifications(userID), nil
}

// recordingNotifier captures notices instead of delivering them.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
	targets [][]uuid.UUID
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, userIDs []uuid.UUID, notice Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
	r.targets = append(r.targets, append([]uuid.UUID(nil), userIDs...))
	return r.err
}

type fakeImages struct {
	deleted  []string
	uploaded int
	err      error
}

func (f *fakeImages) UploadImage(_ context.Context, file io.Reader, folder string) (cloudinary.Uploaded, error) {
	if f.err != nil {
		return cloudinary.Uploaded{}, f.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return cloudinary.Uploaded{}, err
	}
	f.uploaded++
	return cloudinary.Uploaded{URL: "https://res.cloudinary.com/demo/" + folder + "/img.jpg", PublicID: folder + "/img"}, nil
}

func (f *fakeImages) DeleteImage(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func freezeTime(t interface{ Cleanup(func()) }, now time.Time) {
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func seedUser(s *memoryStore, name string) *models.User {
	u := &models.User{ID: uuid.New(), Name: name, Email: strings.ToLower(name) + "@example.com"}
	s.users[u.ID] = u
	return u
}

func seedVendor(s *memoryStore, owner uuid.UUID, name string) *models.Vendor {
	v := &models.Vendor{ID: uuid.New(), UserID: owner, Name: name}
	s.vendors[v.ID] = v
	return v
}

func seedProduct(s *memoryStore, vendorID uuid.UUID, name string) *models.Product {
	p := &models.Product{ID: uuid.New(), VendorID: vendorID, Name: name, Price: 10, Available: true}
	s.products[p.ID] = p
	return p
}
