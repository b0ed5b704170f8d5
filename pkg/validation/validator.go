// Package validation checks the requests entering the pipeline before any
// extraction, export or mint work starts. Struct-tag validation covers the
// shape of a request; the extra checks cover what tags cannot express.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxIncludeTypes = 50
	MaxTypeLength   = 64
	MaxNameLength   = 256
	MaxBatchNodes   = 5000
	MinTolerance    = 0.0
	MaxTolerance    = 1.0

	ifcTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	ethAddrPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

func init() {
	validate = validator.New()
}

// ProcessRequest asks for one IFC file to be extracted and stored.
type ProcessRequest struct {
	FilePath     string   `json:"filePath" validate:"required"`
	BuildingName string   `json:"buildingName" validate:"omitempty,max=256"`
	IncludeTypes []string `json:"includeTypes" validate:"omitempty,max=50,dive,min=1,max=64"`
	Tolerance    float64  `json:"tolerance" validate:"omitempty"`
}

// ExportRequest asks for a stored file's graph in chain-ready form.
type ExportRequest struct {
	FileID       string   `json:"fileId" validate:"required"`
	IncludeTypes []string `json:"includeTypes" validate:"omitempty,max=50,dive,min=1,max=64"`
}

// MintRequest asks for validated calldata to be submitted on-chain.
type MintRequest struct {
	FileID          string `json:"fileId" validate:"required"`
	ProjectName     string `json:"projectName" validate:"required,min=1,max=256"`
	ContractAddress string `json:"contractAddress" validate:"omitempty"`
	ChainID         uint64 `json:"chainId" validate:"required,min=1"`
}

// ValidateProcessRequest validates an extraction request.
func ValidateProcessRequest(req *ProcessRequest) error {
	if req == nil {
		return errors.New("process request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if !strings.EqualFold(filepath.Ext(req.FilePath), ".ifc") {
		return fmt.Errorf("FilePath: '%s' is not an IFC file", req.FilePath)
	}
	if req.Tolerance < MinTolerance || req.Tolerance > MaxTolerance {
		return fmt.Errorf("Tolerance: value %g is outside range [%g, %g]", req.Tolerance, MinTolerance, MaxTolerance)
	}
	return validateIncludeTypes(req.IncludeTypes)
}

// ValidateExportRequest validates an export request.
func ValidateExportRequest(req *ExportRequest) error {
	if req == nil {
		return errors.New("export request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return validateIncludeTypes(req.IncludeTypes)
}

// ValidateMintRequest validates a mint request.
func ValidateMintRequest(req *MintRequest) error {
	if req == nil {
		return errors.New("mint request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if req.ContractAddress != "" && !ethAddrPattern.MatchString(req.ContractAddress) {
		return fmt.Errorf("ContractAddress: '%s' is not a valid address (expected 0x followed by 40 hex digits)", req.ContractAddress)
	}
	return nil
}

func validateIncludeTypes(types []string) error {
	for _, t := range types {
		if !ifcTypePattern.MatchString(t) {
			return fmt.Errorf("IncludeTypes: type '%s' contains invalid characters (only alphanumeric and underscore allowed)", t)
		}
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "dive":
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
