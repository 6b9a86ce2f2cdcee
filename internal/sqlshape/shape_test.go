package sqlshape

import "testing"

func TestParse_Tables(t *testing.T) {
	s := Parse("SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id WHERE o.status = 'open'")

	if len(s.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d: %+v", len(s.Tables), s.Tables)
	}
	if s.Tables[0].Name != "orders" || s.Tables[0].Alias != "o" {
		t.Errorf("first table = %+v, want orders/o", s.Tables[0])
	}
	if s.Tables[1].Name != "customers" || s.Tables[1].Alias != "c" {
		t.Errorf("second table = %+v, want customers/c", s.Tables[1])
	}
}

func TestParse_JoinPredicates(t *testing.T) {
	s := Parse("SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id")

	if len(s.JoinPredicates) != 1 {
		t.Fatalf("expected 1 join predicate, got %d", len(s.JoinPredicates))
	}
	jp := s.JoinPredicates[0]
	if jp.Left != (ColumnRef{Table: "o", Column: "customer_id"}) {
		t.Errorf("left = %+v", jp.Left)
	}
	if jp.Right != (ColumnRef{Table: "c", Column: "id"}) {
		t.Errorf("right = %+v", jp.Right)
	}
}

func TestParse_WhereColumns(t *testing.T) {
	s := Parse("SELECT * FROM users WHERE status = 'active' AND orders.total > 100")

	foundBare, foundQualified := false, false
	for _, c := range s.WhereColumns {
		if c.Table == "" && c.Column == "status" {
			foundBare = true
		}
		if c.Table == "orders" && c.Column == "total" {
			foundQualified = true
		}
	}
	if !foundBare {
		t.Errorf("expected to find bare column 'status', got %+v", s.WhereColumns)
	}
	if !foundQualified {
		t.Errorf("expected to find qualified column 'orders.total', got %+v", s.WhereColumns)
	}
}

func TestParse_SelectStar(t *testing.T) {
	if !Parse("SELECT * FROM users").SelectStar {
		t.Error("expected SelectStar = true")
	}
	if Parse("SELECT id, name FROM users").SelectStar {
		t.Error("expected SelectStar = false")
	}
}

func TestParse_SelectColumns(t *testing.T) {
	s := Parse("SELECT id, name, email FROM users")
	want := []string{"id", "name", "email"}
	if len(s.SelectColumns) != len(want) {
		t.Fatalf("got %v, want %v", s.SelectColumns, want)
	}
	for i, w := range want {
		if s.SelectColumns[i] != w {
			t.Errorf("SelectColumns[%d] = %q, want %q", i, s.SelectColumns[i], w)
		}
	}
}

func TestParse_OrderByColumns(t *testing.T) {
	s := Parse("SELECT id FROM users ORDER BY created_at DESC, id ASC")
	if len(s.OrderByColumns) != 2 {
		t.Fatalf("expected 2 order-by columns, got %d: %+v", len(s.OrderByColumns), s.OrderByColumns)
	}
}

func TestParse_OrderByRand(t *testing.T) {
	if !Parse("SELECT * FROM users ORDER BY RAND() LIMIT 1").HasOrderByRand {
		t.Error("expected HasOrderByRand = true")
	}
	if Parse("SELECT * FROM users ORDER BY id").HasOrderByRand {
		t.Error("expected HasOrderByRand = false")
	}
}

func TestParse_LeadingWildcardLike(t *testing.T) {
	if !Parse("SELECT * FROM users WHERE name LIKE '%smith'").HasLeadingWildcardLike {
		t.Error("expected HasLeadingWildcardLike = true")
	}
	if Parse("SELECT * FROM users WHERE name LIKE 'smith%'").HasLeadingWildcardLike {
		t.Error("expected HasLeadingWildcardLike = false")
	}
}

func TestParse_NotInSubquery(t *testing.T) {
	s := Parse("SELECT * FROM users WHERE id NOT IN (SELECT user_id FROM banned)")
	if !s.HasNotInSubquery {
		t.Error("expected HasNotInSubquery = true")
	}
}

func TestParse_ORChainLength(t *testing.T) {
	s := Parse("SELECT * FROM users WHERE status = 'a' OR status = 'b' OR status = 'c'")
	if s.ORChainLength != 2 {
		t.Errorf("ORChainLength = %d, want 2", s.ORChainLength)
	}
}

func TestParse_FunctionWrappedColumns(t *testing.T) {
	s := Parse("SELECT * FROM users WHERE YEAR(created_at) = 2024")
	if len(s.FunctionWrappedColumns) != 1 {
		t.Fatalf("expected 1 function-wrapped column, got %d: %+v", len(s.FunctionWrappedColumns), s.FunctionWrappedColumns)
	}
	if s.FunctionWrappedColumns[0].Column != "created_at" {
		t.Errorf("column = %q, want created_at", s.FunctionWrappedColumns[0].Column)
	}
}

func TestParse_GroupByLimitDistinct(t *testing.T) {
	s := Parse("SELECT DISTINCT status, COUNT(*) FROM orders GROUP BY status LIMIT 10")
	if !s.HasGroupBy {
		t.Error("expected HasGroupBy = true")
	}
	if !s.HasLimit {
		t.Error("expected HasLimit = true")
	}
	if !s.HasDistinct {
		t.Error("expected HasDistinct = true")
	}
}

func TestParse_CorrelatedSubquery(t *testing.T) {
	s := Parse("SELECT * FROM orders o WHERE EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id)")
	if !s.HasCorrelatedSubquery {
		t.Error("expected HasCorrelatedSubquery = true")
	}
}

func TestParse_EmptyOnUnparsable(t *testing.T) {
	s := Parse("")
	if len(s.Tables) != 0 || s.SelectStar {
		t.Errorf("expected empty shape for empty input, got %+v", s)
	}
}
