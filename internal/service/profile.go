package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/GBZC2708/procard-api/internal"
	"github.com/GBZC2708/procard-api/internal/storage"
)

var validate = validator.New()

// ProfilePatchRequest updates only the provided fields. Pointer fields
// distinguish "not provided" from zero.
type ProfilePatchRequest struct {
	DisplayName      *string  `json:"display_name" validate:"omitempty,min=1"`
	Sex              *string  `json:"sex" validate:"omitempty,oneof=male female"`
	Age              *int     `json:"age" validate:"omitempty,gte=0,lte=130"`
	HeightCm         *float64 `json:"height_cm" validate:"omitempty,gt=0"`
	UsesPharmacology *bool    `json:"uses_pharmacology"`

	NeckCm          *float64 `json:"neck_cm" validate:"omitempty,gt=0"`
	WaistCm         *float64 `json:"waist_cm" validate:"omitempty,gt=0"`
	HipCm           *float64 `json:"hip_cm" validate:"omitempty,gt=0"`
	ChestCm         *float64 `json:"chest_cm" validate:"omitempty,gt=0"`
	WristCm         *float64 `json:"wrist_cm" validate:"omitempty,gt=0"`
	ThighCm         *float64 `json:"thigh_cm" validate:"omitempty,gt=0"`
	CalfCm          *float64 `json:"calf_cm" validate:"omitempty,gt=0"`
	RelaxedBicepsCm *float64 `json:"relaxed_biceps_cm" validate:"omitempty,gt=0"`
	FlexedBicepsCm  *float64 `json:"flexed_biceps_cm" validate:"omitempty,gt=0"`
	ForearmCm       *float64 `json:"forearm_cm" validate:"omitempty,gt=0"`
	FootCm          *float64 `json:"foot_cm" validate:"omitempty,gt=0"`
}

func ValidateProfilePatch(req *ProfilePatchRequest) error {
	return validate.Struct(req)
}

// GetOrCreateProfile returns the user's profile, creating the default one on
// first read.
func GetOrCreateProfile(ctx context.Context, repo storage.ProfileRepository, username string) (*internal.UserProfile, error) {
	p, err := repo.GetProfile(ctx, username)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, internal.ErrNotFound) {
		return nil, err
	}
	p = internal.NewUserProfile(username)
	if err := repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of req and upserts the result.
func UpdateProfile(ctx context.Context, repo storage.ProfileRepository, username string, req *ProfilePatchRequest) (*internal.UserProfile, error) {
	p, err := GetOrCreateProfile(ctx, repo, username)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Sex != nil {
		p.Sex = internal.Sex(*req.Sex)
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.HeightCm != nil {
		p.HeightCm = *req.HeightCm
	}
	if req.UsesPharmacology != nil {
		p.UsesPharmacology = *req.UsesPharmacology
	}
	if req.NeckCm != nil {
		p.NeckCm = req.NeckCm
	}
	if req.WaistCm != nil {
		p.WaistCm = req.WaistCm
	}
	if req.HipCm != nil {
		p.HipCm = req.HipCm
	}
	if req.ChestCm != nil {
		p.ChestCm = req.ChestCm
	}
	if req.WristCm != nil {
		p.WristCm = req.WristCm
	}
	if req.ThighCm != nil {
		p.ThighCm = req.ThighCm
	}
	if req.CalfCm != nil {
		p.CalfCm = req.CalfCm
	}
	if req.RelaxedBicepsCm != nil {
		p.RelaxedBicepsCm = req.RelaxedBicepsCm
	}
	if req.FlexedBicepsCm != nil {
		p.FlexedBicepsCm = req.FlexedBicepsCm
	}
	if req.ForearmCm != nil {
		p.ForearmCm = req.ForearmCm
	}
	if req.FootCm != nil {
		p.FootCm = req.FootCm
	}

	if err := repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
