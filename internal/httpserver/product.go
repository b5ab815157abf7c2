package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	items, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Successfully Fetched All Products",
		"allProducts": items,
	})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	product, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) GetCategories(c echo.Context) error {
	cats, err := h.Svc.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Successfully Fetched All Categories",
		"categories": cats,
	})
}

func (h *ProductHTTP) Search(c echo.Context) error {
	page, err := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	if err != nil {
		return err
	}

	total, items, err := h.Svc.SearchProducts(c.Request().Context(), c.QueryParam("q"), page.Offset(), page.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"page":     page.Number,
		"size":     page.Size,
		"products": items,
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return invalidBody(err)
	}

	p, err := h.Svc.Create(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Created New Product Successfully!",
		"newProduct": p,
	})
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "patch_product")

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return invalidBody(err)
	}

	p, err := h.Svc.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product Updated",
		"product": p,
	})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	p, err := h.Svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product Deleted",
		"product": p,
	})
}
