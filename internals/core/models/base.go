package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error             { ensureID(&u.ID); return nil }
func (v *Vendor) BeforeCreate(*gorm.DB) error           { ensureID(&v.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error          { ensureID(&p.ID); return nil }
func (c *Classified) BeforeCreate(*gorm.DB) error       { ensureID(&c.ID); return nil }
func (f *Follow) BeforeCreate(*gorm.DB) error           { ensureID(&f.ID); return nil }
func (f *Favorite) BeforeCreate(*gorm.DB) error         { ensureID(&f.ID); return nil }
func (c *Conversation) BeforeCreate(*gorm.DB) error     { ensureID(&c.ID); return nil }
func (m *Message) BeforeCreate(*gorm.DB) error          { ensureID(&m.ID); return nil }
func (c *Coupon) BeforeCreate(*gorm.DB) error           { ensureID(&c.ID); return nil }
func (r *CouponRedemption) BeforeCreate(*gorm.DB) error { ensureID(&r.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error     { ensureID(&n.ID); return nil }
func (p *Payment) BeforeCreate(*gorm.DB) error          { ensureID(&p.ID); return nil }
