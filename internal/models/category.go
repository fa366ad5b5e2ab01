package models

// Category 商品分类
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
