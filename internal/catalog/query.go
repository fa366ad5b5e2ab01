package catalog

import (
	"encoding/json"
	"strings"
)

const listProjection = `{name, "slug": slug.current, price, type, "image_url": image.asset->url, "category": category->{name, "slug": slug.current}, quantity}`

const detailProjection = `{name, "slug": slug.current, price, type, "image_url": image.asset->url, "category": category->{name, "slug": slug.current}, quantity, description, features, dimensions{height, width, depth}}`

// 固定查询
const (
	ProductBySlugQuery   = `*[_type == "product" && slug.current == $slug][0]` + detailProjection
	ProductsBySlugsQuery = `*[_type == "product" && slug.current in $slugs]` + listProjection
	CategoryListQuery    = `*[_type == "category"] | order(name asc){name, "slug": slug.current}`
)

// BuildProductListQuery 将筛选条件翻译为后端查询
// 只为存在的条件生成子句并以 && 连接，取值全部通过参数绑定。
func BuildProductListQuery(filter Filter) (string, map[string]interface{}) {
	clauses := []string{`_type == "product"`}
	params := make(map[string]interface{})

	if filter.Category != "" {
		clauses = append(clauses, `category->slug.current == $category`)
		params["category"] = filter.Category
	}
	if filter.Type != "" {
		clauses = append(clauses, `type == $type`)
		params["type"] = filter.Type
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, `price <= $maxPrice`)
		params["maxPrice"] = json.Number(filter.MaxPrice.String())
	}

	return "*[" + strings.Join(clauses, " && ") + "]" + listProjection, params
}
