package models

import (
	"time"
)

// Program status values
const (
	ProgramStatusNormal = "normal"
	ProgramStatusHalted = "halted"
)

// ProgramConfig is the process-wide singleton: one row, created by Initialize,
// mutated only by the signing authority, never deleted.
type ProgramConfig struct {
	ID                      uint      `gorm:"primarykey" json:"id"`
	SigningAuthority        string    `gorm:"size:64;not null" json:"signing_authority"`
	BackAuthority           string    `gorm:"size:64;not null" json:"back_authority"`
	IsBackAuthorityRequired bool      `gorm:"default:false" json:"is_back_authority_required"`
	ProgramStatus           string    `gorm:"size:20;not null;default:'normal'" json:"program_status"`
	IsFeeRequired           bool      `gorm:"default:false" json:"is_fee_required"`
	FeeBasePoint            uint16    `gorm:"not null" json:"fee_base_point"`
	FeeReceiver             string    `gorm:"size:64;not null" json:"fee_receiver"`
	RoundLimit              uint16    `gorm:"not null" json:"round_limit"`
	DistributionBasePoint   uint16    `gorm:"not null" json:"distribution_base_point"`
	LockBasePoint           uint16    `gorm:"not null" json:"lock_base_point"`
	LockDuration            int64     `gorm:"not null" json:"lock_duration"` // seconds
	MintingFee              uint64    `gorm:"default:0" json:"minting_fee"`  // per collection unit
	Treasury                string    `gorm:"size:64" json:"treasury"`
	CreatedAt               time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt               time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ProgramConfig) TableName() string {
	return "program_config"
}
