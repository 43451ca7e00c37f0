package nlquery

import (
	"fmt"
	"regexp"
)

// Rule binds a recognition pattern to a SQL template. Patterns are
// word-boundary regexps applied to the normalized question, so "orders"
// never fires inside "preorders". Capture groups feed the template; a
// rule whose capture is absent renders with its documented default
// instead of failing resolution.
type Rule struct {
	Name     string
	Category string
	pattern  *regexp.Regexp
	render   func(captures []string) string
}

// Apply returns the rendered SQL when the rule recognizes the question.
func (r Rule) Apply(question string) (string, bool) {
	m := r.pattern.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	return r.render(m), true
}

// static renders the same SQL for every match.
func static(sql string) func([]string) string {
	return func([]string) string { return sql }
}

// capture renders the template with the first capture group, or with def
// when the group did not participate in the match.
func capture(format, def string) func([]string) string {
	return func(m []string) string {
		val := def
		if len(m) > 1 && m[1] != "" {
			val = m[1]
		}
		return fmt.Sprintf(format, val)
	}
}

// queryRules is evaluated strictly in declaration order and the first
// match wins. Narrow phrasings sit ahead of broader ones sharing the same
// vocabulary so a specific intent is never swallowed by a catch-all. Keep
// it a slice: the order is part of the contract.
var queryRules = []Rule{
	// Descriptive summaries
	{
		Name:     "count-users",
		Category: "count",
		pattern:  regexp.MustCompile(`\bhow many users\b`),
		render:   static("SELECT COUNT(*) AS user_count FROM users;"),
	},
	{
		Name:     "count-orders",
		Category: "count",
		pattern:  regexp.MustCompile(`\bhow many orders\b`),
		render:   static("SELECT COUNT(*) AS order_count FROM orders;"),
	},
	{
		Name:     "count-products",
		Category: "count",
		pattern:  regexp.MustCompile(`\bhow many products\b`),
		render:   static("SELECT COUNT(*) AS product_count FROM products;"),
	},
	{
		Name:     "total-revenue",
		Category: "sum",
		pattern:  regexp.MustCompile(`\btotal revenue\b`),
		render:   static("SELECT SUM(o.quantity * p.price) AS total_revenue FROM orders o JOIN products p ON o.product_id = p.id;"),
	},

	// Rankings and group summaries
	{
		Name:     "top-category-by-revenue",
		Category: "ranking",
		pattern:  regexp.MustCompile(`\bwhich category has the highest revenue\b`),
		render: static(`SELECT p.category, SUM(o.quantity * p.price) AS revenue
FROM orders o JOIN products p ON o.product_id = p.id
GROUP BY p.category
ORDER BY revenue DESC
LIMIT 1;`),
	},
	{
		Name:     "most-ordered-product",
		Category: "ranking",
		pattern:  regexp.MustCompile(`\bmost ordered product\b`),
		render: static(`SELECT p.name, SUM(o.quantity) AS total_ordered
FROM orders o JOIN products p ON o.product_id = p.id
GROUP BY p.name
ORDER BY total_ordered DESC
LIMIT 1;`),
	},
	{
		Name:     "top-n-products",
		Category: "ranking",
		pattern:  regexp.MustCompile(`\btop\s+(?:(\d+)\s+)?products\b`),
		render: capture(`SELECT p.name, SUM(o.quantity) AS total_ordered
FROM orders o JOIN products p ON o.product_id = p.id
GROUP BY p.name
ORDER BY total_ordered DESC
LIMIT %s;`, "5"),
	},

	// Time trends
	{
		Name:     "revenue-by-month",
		Category: "trend",
		pattern:  regexp.MustCompile(`\brevenue by month\b|\bmonthly revenue\b`),
		render: static(`SELECT date_trunc('month', o.order_date) AS month, SUM(o.quantity * p.price) AS revenue
FROM orders o JOIN products p ON o.product_id = p.id
GROUP BY month
ORDER BY month;`),
	},
	{
		Name:     "revenue-over-time",
		Category: "trend",
		pattern:  regexp.MustCompile(`\brevenue over time\b`),
		render: static(`SELECT o.order_date, SUM(o.quantity * p.price) AS revenue
FROM orders o JOIN products p ON o.product_id = p.id
GROUP BY o.order_date
ORDER BY o.order_date;`),
	},
	{
		Name:     "order-count-over-time",
		Category: "trend",
		pattern:  regexp.MustCompile(`\border count over time\b`),
		render: static(`SELECT o.order_date, COUNT(*) AS order_count
FROM orders o
GROUP BY o.order_date
ORDER BY o.order_date;`),
	},

	// Filters
	{
		Name:     "orders-above-quantity",
		Category: "filter",
		pattern:  regexp.MustCompile(`\borders with quantity\b(?:\s*(?:>|over|above)\s*(\d+))?`),
		render:   capture("SELECT * FROM orders WHERE quantity > %s;", "1"),
	},
	{
		Name:     "orders-since-date",
		Category: "filter",
		pattern:  regexp.MustCompile(`\borders (?:since|after|from)\s+(\d{4}-\d{2}-\d{2})\b`),
		render:   capture("SELECT * FROM orders WHERE order_date >= '%s';", ""),
	},
	{
		Name:     "products-in-category",
		Category: "filter",
		pattern:  regexp.MustCompile(`\bproducts in category\b(?:\s+['"]?(\w+))?`),
		render:   capture("SELECT * FROM products WHERE category = '%s';", "General"),
	},

	// Comparisons
	{
		Name:     "users-exceeding-order-count",
		Category: "comparison",
		pattern:  regexp.MustCompile(`\busers with more than\s+(?:(\d+)\s+)?orders\b`),
		render: capture(`SELECT u.name, COUNT(o.id) AS order_count
FROM users u JOIN orders o ON u.id = o.user_id
GROUP BY u.name
HAVING COUNT(o.id) > %s
ORDER BY order_count DESC;`, "1"),
	},
	{
		Name:     "revenue-by-category",
		Category: "comparison",
		pattern:  regexp.MustCompile(`\bcompare revenue by category\b|\brevenue by category\b`),
		render: static(`SELECT p.category, SUM(o.quantity * p.price) AS revenue
FROM orders o JOIN products p ON o.product_id = p.id
GROUP BY p.category
ORDER BY revenue DESC;`),
	},
	{
		Name:     "users-by-order-count",
		Category: "comparison",
		pattern:  regexp.MustCompile(`\bcompare users by number of orders\b`),
		render: static(`SELECT u.name, COUNT(o.id) AS order_count
FROM users u JOIN orders o ON u.id = o.user_id
GROUP BY u.name
ORDER BY order_count DESC;`),
	},
}

// Rules returns the rule set in evaluation order.
func Rules() []Rule {
	return queryRules
}
