package models

import (
	"errors"
	"fmt"
)

// Category 固定分类，名称唯一，颜色用于筛选按钮和列表标签
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var ErrUnknownCategory = errors.New("unknown category")

var categories = []Category{
	{Name: "top rated", Color: "#064e3b"},
	{Name: "hidden gems", Color: "#701a75"},
	{Name: "critically acclaimed", Color: "#0c4a6e"},
	{Name: "cult classics", Color: "#881337"},
	{Name: "indie films", Color: "#db2777"},
	{Name: "blockbusters", Color: "#0d9488"},
	{Name: "recently released", Color: "#5a1c93"},
}

// Categories returns a copy of the registry in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory finds a category by name.
func LookupCategory(name string) (Category, error) {
	for _, c := range categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

func IsCategory(name string) bool {
	_, err := LookupCategory(name)
	return err == nil
}
