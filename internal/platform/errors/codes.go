package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeRequestInvalid represents a malformed request envelope.
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Character errors
	CodeCharacterEmptyName     Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterEmptyRegion   Code = "CHARACTER_EMPTY_REGION"
	CodeCharacterInvalidKind   Code = "CHARACTER_INVALID_KIND"
	CodeCharacterInvalidStats  Code = "CHARACTER_INVALID_STATS"
	CodeCharacterAlreadyExists Code = "CHARACTER_ALREADY_EXISTS"

	// Effect errors
	CodeEffectEmptyName        Code = "EFFECT_EMPTY_NAME"
	CodeEffectInvalidTag       Code = "EFFECT_INVALID_TAG"
	CodeEffectInvalidTurns     Code = "EFFECT_INVALID_TURNS"
	CodeEffectInvalidModifier  Code = "EFFECT_INVALID_MODIFIER"
	CodeEffectUnknownTemplate  Code = "EFFECT_UNKNOWN_TEMPLATE"
	CodeEffectHealingNegative  Code = "EFFECT_HEALING_NEGATIVE"
	CodeEffectDamageNegative   Code = "EFFECT_DAMAGE_NEGATIVE"
	CodeEffectNotOnCharacter   Code = "EFFECT_NOT_ON_CHARACTER"
	CodeEffectCatalogCorrupted Code = "EFFECT_CATALOG_CORRUPTED"

	// Task errors
	CodeTaskEmptyNPC          Code = "TASK_EMPTY_NPC"
	CodeTaskEmptyKind         Code = "TASK_EMPTY_KIND"
	CodeTaskInvalidTransition Code = "TASK_INVALID_TRANSITION"
	CodeTaskRewardScript      Code = "TASK_REWARD_SCRIPT_FAILED"

	// Payment errors
	CodePaymentEmptyTransaction Code = "PAYMENT_EMPTY_TRANSACTION"
	CodePaymentInvalidAmount    Code = "PAYMENT_INVALID_AMOUNT"

	// Inventory errors
	CodeInventoryEmptyItem       Code = "INVENTORY_EMPTY_ITEM"
	CodeInventoryInvalidQuantity Code = "INVENTORY_INVALID_QUANTITY"
	CodeInventoryInsufficient    Code = "INVENTORY_INSUFFICIENT"

	// Signing errors
	CodeSignatureMissing  Code = "SIGNATURE_MISSING"
	CodeSignatureInvalid  Code = "SIGNATURE_INVALID"
	CodeSignatureExpired  Code = "SIGNATURE_EXPIRED"
	CodeSignatureReplayed Code = "SIGNATURE_REPLAYED"
	CodeSignatureKeyID    Code = "SIGNATURE_UNKNOWN_KEY_ID"
	CodeSignatureNoRegion Code = "SIGNATURE_EMPTY_REGION"

	// Token errors
	CodeTokenMissing Code = "TOKEN_MISSING"
	CodeTokenInvalid Code = "TOKEN_INVALID"
	CodeTokenExpired Code = "TOKEN_EXPIRED"

	// Filter/pagination errors
	CodeFilterInvalid Code = "FILTER_INVALID"
	CodeCursorInvalid Code = "CURSOR_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP response status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeCharacterEmptyName,
		CodeCharacterEmptyRegion,
		CodeCharacterInvalidKind,
		CodeCharacterInvalidStats,
		CodeEffectEmptyName,
		CodeEffectInvalidTag,
		CodeEffectInvalidTurns,
		CodeEffectInvalidModifier,
		CodeEffectUnknownTemplate,
		CodeEffectHealingNegative,
		CodeEffectDamageNegative,
		CodeTaskEmptyNPC,
		CodeTaskEmptyKind,
		CodePaymentEmptyTransaction,
		CodePaymentInvalidAmount,
		CodeInventoryEmptyItem,
		CodeInventoryInvalidQuantity,
		CodeFilterInvalid,
		CodeCursorInvalid,
		CodeRequestInvalid:
		return http.StatusBadRequest

	// Unauthorized - missing or failed authentication
	case CodeSignatureMissing,
		CodeSignatureInvalid,
		CodeSignatureExpired,
		CodeSignatureReplayed,
		CodeSignatureKeyID,
		CodeSignatureNoRegion,
		CodeTokenMissing,
		CodeTokenInvalid,
		CodeTokenExpired:
		return http.StatusUnauthorized

	// Conflict - state disallows the operation
	case CodeCharacterAlreadyExists,
		CodeTaskInvalidTransition,
		CodeInventoryInsufficient:
		return http.StatusConflict

	case CodeNotFound, CodeEffectNotOnCharacter:
		return http.StatusNotFound

	case CodeEffectCatalogCorrupted, CodeTaskRewardScript:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
