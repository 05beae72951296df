package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/upload"
)

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	Insert(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, q repository.ProductQuery) ([]model.Product, int64, error)
	Update(ctx context.Context, id string, ch model.ProductChanges) (*model.Product, error)
	Delete(ctx context.Context, id string) (*model.Product, error)
}

// ImageStore stores and releases product images.
type ImageStore interface {
	Accept(ctx context.Context, img *upload.Image) (string, error)
	Release(ctx context.Context, publicPath string)
}

// ProductForm carries the raw text fields of a product request.  Fields not
// sent by the client are absent from present.
type ProductForm struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"required,max=1000"`
	Category    string `validate:"required,category"`
	Price       string `validate:"required,price"`
	Stock       string `validate:"omitempty,stock"`

	present map[string]bool
}

var productFields = map[string]string{
	"name":        "Name",
	"description": "Description",
	"category":    "Category",
	"price":       "Price",
	"stock":       "Stock",
}

// NewProductForm reads the product fields from form values.  Values are
// trimmed; a stock sent empty counts as not sent.
func NewProductForm(v url.Values) ProductForm {
	f := ProductForm{present: map[string]bool{}}
	for key, field := range productFields {
		vals, ok := v[key]
		if !ok {
			continue
		}
		val := ""
		if len(vals) > 0 {
			val = strings.TrimSpace(vals[0])
		}
		if field == "Stock" && val == "" {
			continue
		}
		f.present[field] = true
		switch field {
		case "Name":
			f.Name = val
		case "Description":
			f.Description = val
		case "Category":
			f.Category = val
		case "Price":
			f.Price = val
		case "Stock":
			f.Stock = val
		}
	}
	return f
}

func (f ProductForm) presentFields() []string {
	out := make([]string, 0, len(f.present))
	for _, field := range []string{"Name", "Description", "Category", "Price", "Stock"} {
		if f.present[field] {
			out = append(out, field)
		}
	}
	return out
}

var categoryList = strings.Join(model.Categories, ", ")

var createMessages = messages{
	"Name.required":        "Product name is required",
	"Name.max":             "Product name cannot exceed 100 characters",
	"Description.required": "Product description is required",
	"Description.max":      "Product description cannot exceed 1000 characters",
	"Category.required":    "Product category is required",
	"Category.category":    "Invalid category. Must be one of: " + categoryList,
	"Price.required":       "Product price is required",
	"Price.price":          "Product price must be a positive number",
	"Stock.stock":          "Product stock must be a non-negative integer",
}

var patchMessages = messages{
	"Name.required":        "Product name cannot be empty",
	"Name.max":             "Product name cannot exceed 100 characters",
	"Description.required": "Product description cannot be empty",
	"Description.max":      "Product description cannot exceed 1000 characters",
	"Category.required":    "Product category cannot be empty",
	"Category.category":    "Invalid category. Must be one of: " + categoryList,
	"Price.required":       "Product price cannot be empty",
	"Price.price":          "Product price must be a positive number",
	"Stock.stock":          "Product stock must be a non-negative integer",
}

// ProductPage is one page of a listing.
type ProductPage struct {
	Items      []model.Product
	Total      int64
	TotalPages int64
	Page       int
}

// CatalogService implements product CRUD and keeps stored images in step
// with product records.
type CatalogService struct {
	products ProductStore
	images   ImageStore
	validate *Validator
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewCatalogService(products ProductStore, images ImageStore, v *Validator, timeout time.Duration, log *zerolog.Logger) *CatalogService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CatalogService{products: products, images: images, validate: v, timeout: timeout, log: log}
}

// Create validates f, stores img and inserts the product.  The stored image
// is released when the insert fails.
func (s *CatalogService) Create(ctx context.Context, f ProductForm, img *upload.Image, actor string) (*model.Product, error) {
	if err := s.validate.Struct(f, createMessages); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperror.MissingImage()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	imageURL, err := s.images.Accept(ctx, img)
	if err != nil {
		return nil, err
	}

	price, _ := parsePrice(f.Price)
	stock := 0
	if f.Stock != "" {
		stock, _ = parseStock(f.Stock)
	}
	p := &model.Product{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Price:       price,
		Stock:       stock,
		ImageURL:    imageURL,
		UpdatedBy:   actor,
	}
	if err := s.products.Insert(ctx, p); err != nil {
		s.images.Release(context.WithoutCancel(ctx), imageURL)
		return nil, apperror.CreationFailed(err)
	}
	s.log.Info().Str("product_id", p.ID.Hex()).Str("actor", actor).Msg("product created")
	return p, nil
}

// List returns the page of products selected by q.
func (s *CatalogService) List(ctx context.Context, q repository.ProductQuery) (*ProductPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, apperror.Server(err)
	}
	return &ProductPage{Items: items, Total: total, TotalPages: q.TotalPages(total), Page: q.Page}, nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.Product, error) {
	if !ValidID(id) {
		return nil, apperror.InvalidID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperror.Server)
	}
	return p, nil
}

// Replace overwrites every product field.  An omitted stock resets to 0.
func (s *CatalogService) Replace(ctx context.Context, id string, f ProductForm, img *upload.Image, actor string) (*model.Product, error) {
	if !ValidID(id) {
		return nil, apperror.InvalidID()
	}
	if err := s.validate.Struct(f, createMessages); err != nil {
		return nil, err
	}

	price, _ := parsePrice(f.Price)
	stock := 0
	if f.Stock != "" {
		stock, _ = parseStock(f.Stock)
	}
	ch := model.ProductChanges{
		Name:        &f.Name,
		Description: &f.Description,
		Category:    &f.Category,
		Price:       &price,
		Stock:       &stock,
		UpdatedBy:   actor,
	}
	return s.update(ctx, id, ch, img)
}

// Patch applies only the fields present in f.
func (s *CatalogService) Patch(ctx context.Context, id string, f ProductForm, img *upload.Image, actor string) (*model.Product, error) {
	if !ValidID(id) {
		return nil, apperror.InvalidID()
	}
	if err := s.validate.Partial(f, patchMessages, f.presentFields()...); err != nil {
		return nil, err
	}

	ch := model.ProductChanges{UpdatedBy: actor}
	if f.present["Name"] {
		ch.Name = &f.Name
	}
	if f.present["Description"] {
		ch.Description = &f.Description
	}
	if f.present["Category"] {
		ch.Category = &f.Category
	}
	if f.present["Price"] {
		price, _ := parsePrice(f.Price)
		ch.Price = &price
	}
	if f.present["Stock"] {
		stock, _ := parseStock(f.Stock)
		ch.Stock = &stock
	}
	return s.update(ctx, id, ch, img)
}

// update checks existence, stores the new image, writes the record and only
// then releases the previous image.
func (s *CatalogService) update(ctx context.Context, id string, ch model.ProductChanges, img *upload.Image) (*model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperror.UpdateFailed)
	}

	var newImage string
	if img != nil {
		if newImage, err = s.images.Accept(ctx, img); err != nil {
			return nil, err
		}
		ch.ImageURL = &newImage
	}

	updated, err := s.products.Update(ctx, id, ch)
	if err != nil {
		if newImage != "" {
			s.images.Release(context.WithoutCancel(ctx), newImage)
		}
		return nil, notFoundOr(err, apperror.UpdateFailed)
	}

	if newImage != "" && current.ImageURL != newImage {
		s.images.Release(context.WithoutCancel(ctx), current.ImageURL)
	}
	s.log.Info().Str("product_id", id).Str("actor", ch.UpdatedBy).Msg("product updated")
	return updated, nil
}

// Delete removes the product and then its image.
func (s *CatalogService) Delete(ctx context.Context, id string, actor string) error {
	if !ValidID(id) {
		return apperror.InvalidID()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.products.Delete(ctx, id)
	if err != nil {
		return notFoundOr(err, apperror.Server)
	}
	s.images.Release(context.WithoutCancel(ctx), p.ImageURL)
	s.log.Info().Str("product_id", id).Str("actor", actor).Msg("product deleted")
	return nil
}

func notFoundOr(err error, wrap func(error) *apperror.Error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return apperror.ProductNotFound()
	}
	return wrap(err)
}
