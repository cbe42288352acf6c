package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/product/pkg/response"
)

type Doer interface {
	Do(c context.Context, req client.Request, out any) (client.Response, error)
	Variant() client.Variant
}

type ProductService struct {
	client Doer
}

func NewProductService(client Doer) ProductService {
	return ProductService{client: client}
}

func (svc ProductService) ListProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductService ListProducts").Logger()

	logger = logger.With().Str(log.KeyProcess, "fetching products").Logger()
	logger.Info().Msg("fetching products")
	products := []response.Product{}
	if _, err := svc.client.Do(logger.WithContext(c), svc.client.Variant().ListProducts(), &products); err != nil {
		err = fmt.Errorf("failed fetching products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if products == nil {
		products = []response.Product{}
	}
	logger.Info().Int(log.KeyProducts, len(products)).Msg("fetched products")

	return products, nil
}

func (svc ProductService) GetProduct(c context.Context, id string) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String(log.KeyProductID, id))

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService GetProduct").
		Str(log.KeyProductID, id).
		Logger()

	if id == "" {
		err := errors.ErrMissingProductID
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "fetching product").Logger()
	logger.Info().Msg("fetching product")
	product := response.Product{}
	if _, err := svc.client.Do(logger.WithContext(c), svc.client.Variant().GetProduct(id), &product); err != nil {
		err = fmt.Errorf("failed fetching product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Object(log.KeyProducts, product).Msg("fetched product")

	return product, nil
}
