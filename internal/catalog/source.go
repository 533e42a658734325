package catalog

import "context"

// Source loads the product list the catalog is built from.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
}

func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, err
	}
	return New(products)
}

type StaticSource []Product

func (s StaticSource) Products(context.Context) ([]Product, error) {
	out := make([]Product, len(s))
	for i, p := range s {
		out[i] = p.clone()
	}
	return out, nil
}

func Sample() StaticSource {
	return StaticSource{
		{
			ID:    1,
			Name:  "Modern 3-Seater Sofa",
			Type:  "Living Room",
			Price: 24999,
			Image: "https://via.placeholder.com/300x220/f5f5f5/666666?text=Modern+Sofa",
			Tags:  []string{"Top Seller"},
			Stock: 15,
		},
		{
			ID:    2,
			Name:  "Minimalist Dining Table",
			Type:  "6-Seater",
			Price: 18999,
			Image: "https://via.placeholder.com/300x220/f5f5f5/666666?text=Dining+Table",
			Tags:  []string{"New Arrival"},
			Stock: 8,
		},
		{
			ID:    3,
			Name:  "Storage Wardrobe",
			Type:  "4-Door",
			Price: 32999,
			Image: "https://via.placeholder.com/300x220/f5f5f5/666666?text=Wardrobe",
			Tags:  []string{"Best Value"},
			Stock: 5,
		},
		{
			ID:    4,
			Name:  "Ergonomic Office Chair",
			Type:  "Adjustable",
			Price: 8999,
			Image: "https://via.placeholder.com/300x220/f5f5f5/666666?text=Office+Chair",
			Tags:  []string{"Top Seller", "Ergonomic"},
			Stock: 20,
		},
	}
}
