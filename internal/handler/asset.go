package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ravshanbk/asset-reservation/internal/engine"
)

// AssetHandler discloses linked-asset information so the UI can warn the
// requester which other assets a booking will reserve before confirming.
type AssetHandler struct {
	Assets   engine.AssetStore
	Resolver *engine.Resolver
}

// NewAssetHandler constructs an AssetHandler.
func NewAssetHandler(assets engine.AssetStore, resolver *engine.Resolver) *AssetHandler {
	if assets == nil || resolver == nil {
		panic("nil dependency passed to NewAssetHandler")
	}
	return &AssetHandler{Assets: assets, Resolver: resolver}
}

// LinkedAssets handles GET /v1/assets/:id/linked, returning the cascade
// set of the asset (itself included).
func (h *AssetHandler) LinkedAssets(c echo.Context) error {
	assetID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid asset id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Assets.GetAsset(ctx, assetID); err != nil {
		return engineError(c, err)
	}
	members, err := h.Resolver.CascadeSet(ctx, assetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve linked assets"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"asset_id": assetID,
		"linked":   members,
	})
}
