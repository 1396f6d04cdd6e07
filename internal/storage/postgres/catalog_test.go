package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/domain/model"
)

var (
	medicineRowColumns = []string{"id", "name", "type", "price", "photo_url", "exp_date", "created_by", "created_at"}
	headerRowColumns   = []string{"id", "order_id", "idempotency_key", "total_qty", "sub_total", "delivery_fee", "total_price", "is_paid", "paid_at", "created_at"}
	lineRowColumns     = []string{"id", "medicine_order_id", "medicine_id", "medicine_name", "quantity", "unit_price", "total_price"}
)

func TestMedicineRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &medicineRepository{storage: storage}

	now := time.Now()
	exp := now.Add(24 * time.Hour)
	mock.ExpectQuery("SELECT id, name, type, price, photo_url, exp_date, created_by, created_at FROM medicines ORDER BY name").WillReturnRows(
		pgxmockv3.NewRows(medicineRowColumns).
			AddRow("m1", "Amoxicillin", model.MedicineTypeGeneric, int64(5000), nil, &exp, nil, now).
			AddRow("m2", "Paracetamol", model.MedicineTypeBranded, int64(3000), nil, nil, nil, now),
	)
	list, err := repo.List(context.Background())
	if err != nil || len(list) != 2 || list[0].ExpDate == nil || list[1].Type != model.MedicineTypeBranded {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("FROM medicines WHERE name ILIKE").WithArgs(`%para\%%`, 10).WillReturnRows(
		pgxmockv3.NewRows(medicineRowColumns).AddRow("m2", "Paracetamol", model.MedicineTypeBranded, int64(3000), nil, nil, nil, now),
	)
	found, err := repo.Search(context.Background(), " para% ", 10)
	if err != nil || len(found) != 1 {
		t.Fatalf("unexpected search result: %+v err=%v", found, err)
	}

	mock.ExpectQuery("FROM medicines WHERE id").WithArgs([]string{"m1", "m9"}).WillReturnRows(
		pgxmockv3.NewRows(medicineRowColumns).AddRow("m1", "Amoxicillin", model.MedicineTypeGeneric, int64(5000), nil, nil, nil, now),
	)
	byID, err := repo.GetByIDs(context.Background(), []string{"m1", "m9"})
	if err != nil || len(byID) != 1 || byID[0].ID != "m1" {
		t.Fatalf("unexpected lookup: %+v err=%v", byID, err)
	}

	if got, err := repo.GetByIDs(context.Background(), nil); err != nil || got != nil {
		t.Fatalf("expected no query for empty ids, got %v err=%v", got, err)
	}

	mock.ExpectQuery("FROM medicines ORDER BY name").WillReturnError(errors.New("query"))
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM medicines ORDER BY name").WillReturnRows(
		pgxmockv3.NewRows(medicineRowColumns).AddRow("m1", "Amoxicillin", model.MedicineTypeGeneric, int64(5000), nil, nil, nil, "bad"),
	)
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}

	creator := "admin"
	medicine := &model.Medicine{ID: "m3", Name: "Ibuprofen", Type: model.MedicineTypeGeneric, Price: 10000, ExpDate: &exp, CreatedBy: &creator}
	mock.ExpectQuery("INSERT INTO medicines").WithArgs("m3", "Ibuprofen", model.MedicineTypeGeneric, int64(10000), (*string)(nil), &exp, &creator).
		WillReturnRows(pgxmockv3.NewRows([]string{"created_at"}).AddRow(now))
	created, err := repo.Create(context.Background(), medicine)
	if err != nil || !created.CreatedAt.Equal(now) || created == medicine {
		t.Fatalf("unexpected created medicine: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO medicines").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), medicine); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func sampleDraft() model.MedicineOrderDraft {
	return model.MedicineOrderDraft{
		ID:             "mo1",
		OrderID:        "o1",
		IdempotencyKey: model.FulfillmentKey("o1"),
		Totals:         model.Totals{TotalQty: 3, SubTotal: 13000, DeliveryFee: 10000, TotalPrice: 23000},
		Lines: []model.MedicineOrderLine{
			{ID: "l1", MedicineID: "a", MedicineName: "A", Quantity: 2, UnitPrice: 5000, TotalPrice: 10000},
			{ID: "l2", MedicineID: "b", MedicineName: "B", Quantity: 1, UnitPrice: 3000, TotalPrice: 3000},
		},
	}
}

func expectOrderLock(mock pgxmockv3.PgxPoolIface, status model.OrderStatus, linked *string) {
	mock.ExpectQuery("SELECT status, medicine_order_id FROM orders WHERE id=").WithArgs("o1").WillReturnRows(
		pgxmockv3.NewRows([]string{"status", "medicine_order_id"}).AddRow(status, linked))
}

func expectHeaderInsert(mock pgxmockv3.PgxPoolIface, now time.Time) {
	mock.ExpectQuery("INSERT INTO medicine_orders").
		WithArgs("mo1", "o1", "fulfillment:o1", 3, int64(13000), int64(10000), int64(23000), model.PaymentStatusUnverified).
		WillReturnRows(pgxmockv3.NewRows([]string{"created_at"}).AddRow(now))
}

func expectLinesInsert(mock pgxmockv3.PgxPoolIface, affected int64) {
	mock.ExpectExec("INSERT INTO medicine_order_lines").
		WithArgs("mo1", []string{"l1", "l2"}, []string{"a", "b"}, []string{"A", "B"}, []int32{2, 1}, []int64{5000, 3000}, []int64{10000, 3000}).
		WillReturnResult(pgxmockv3.NewResult("INSERT", affected))
}

func TestAttachToOrderCreatesHeaderLinesAndLink(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &medicineOrderRepository{storage: storage}
	now := time.Now()

	mock.ExpectBegin()
	expectOrderLock(mock, model.OrderStatusOngoing, nil)
	mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnError(pgx.ErrNoRows)
	expectHeaderInsert(mock, now)
	expectLinesInsert(mock, 2)
	mock.ExpectExec("UPDATE orders SET medicine_order_id=").WithArgs("mo1", "o1").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	order, replayed, err := repo.AttachToOrder(context.Background(), sampleDraft())
	if err != nil || replayed {
		t.Fatalf("unexpected result replayed=%v err=%v", replayed, err)
	}
	if order.TotalPrice != order.SubTotal+order.DeliveryFee || order.IsPaid != model.PaymentStatusUnverified {
		t.Fatalf("unexpected header: %+v", order)
	}
	if len(order.Lines) != 2 || order.Lines[0].MedicineOrderID != "mo1" {
		t.Fatalf("unexpected lines: %+v", order.Lines)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestAttachToOrderReplaysLinkedHeader(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &medicineOrderRepository{storage: storage}
	now := time.Now()
	linked := "mo1"

	mock.ExpectBegin()
	expectOrderLock(mock, model.OrderStatusOngoing, &linked)
	mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnRows(
		pgxmockv3.NewRows(headerRowColumns).AddRow("mo1", "o1", "fulfillment:o1", 3, int64(13000), int64(10000), int64(23000), model.PaymentStatusUnverified, nil, now))
	mock.ExpectQuery("FROM medicine_order_lines WHERE medicine_order_id=").WithArgs("mo1").WillReturnRows(
		pgxmockv3.NewRows(lineRowColumns).
			AddRow("l1", "mo1", "a", "A", 2, int64(5000), int64(10000)).
			AddRow("l2", "mo1", "b", "B", 1, int64(3000), int64(3000)))
	mock.ExpectCommit()

	order, replayed, err := repo.AttachToOrder(context.Background(), sampleDraft())
	if err != nil || !replayed || order.ID != "mo1" || len(order.Lines) != 2 {
		t.Fatalf("unexpected replay: %+v replayed=%v err=%v", order, replayed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestAttachToOrderFailures(t *testing.T) {
	now := time.Now()
	other := "mo-other"

	cases := []struct {
		name   string
		expect func(mock pgxmockv3.PgxPoolIface)
		want   error
	}{
		{
			name: "order missing",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				mock.ExpectQuery("SELECT status, medicine_order_id FROM orders WHERE id=").WithArgs("o1").WillReturnError(pgx.ErrNoRows)
			},
			want: domainErrors.ErrNotFound,
		},
		{
			name: "key used by another order",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				expectOrderLock(mock, model.OrderStatusOngoing, nil)
				mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnRows(
					pgxmockv3.NewRows(headerRowColumns).AddRow("mo9", "o9", "fulfillment:o1", 1, int64(1), int64(10000), int64(10001), model.PaymentStatusUnverified, nil, now))
				mock.ExpectQuery("FROM medicine_order_lines WHERE medicine_order_id=").WithArgs("mo9").WillReturnRows(pgxmockv3.NewRows(lineRowColumns))
			},
			want: domainErrors.ErrLinkageConflict,
		},
		{
			name: "order completed",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				expectOrderLock(mock, model.OrderStatusCompleted, nil)
				mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnError(pgx.ErrNoRows)
			},
			want: domainErrors.ErrOrderClosed,
		},
		{
			name: "order linked elsewhere",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				expectOrderLock(mock, model.OrderStatusOngoing, &other)
				mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnError(pgx.ErrNoRows)
			},
			want: domainErrors.ErrLinkageConflict,
		},
		{
			name: "concurrent header insert",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				expectOrderLock(mock, model.OrderStatusOngoing, nil)
				mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery("INSERT INTO medicine_orders").WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			want: domainErrors.ErrLinkageConflict,
		},
		{
			name: "lines partially stored",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				expectOrderLock(mock, model.OrderStatusOngoing, nil)
				mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnError(pgx.ErrNoRows)
				expectHeaderInsert(mock, now)
				expectLinesInsert(mock, 1)
			},
			want: domainErrors.ErrIncompleteLines,
		},
		{
			name: "link lost race",
			expect: func(mock pgxmockv3.PgxPoolIface) {
				expectOrderLock(mock, model.OrderStatusOngoing, nil)
				mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnError(pgx.ErrNoRows)
				expectHeaderInsert(mock, now)
				expectLinesInsert(mock, 2)
				mock.ExpectExec("UPDATE orders SET medicine_order_id=").WithArgs("mo1", "o1").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
			},
			want: domainErrors.ErrLinkageConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage, mock := newMockStorage(t)
			defer mock.Close()
			repo := &medicineOrderRepository{storage: storage}

			mock.ExpectBegin()
			tc.expect(mock)
			mock.ExpectRollback()

			order, _, err := repo.AttachToOrder(context.Background(), sampleDraft())
			if !errors.Is(err, tc.want) || order != nil {
				t.Fatalf("expected %v, got order=%+v err=%v", tc.want, order, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations not met: %v", err)
			}
		})
	}
}

func TestAttachToOrderRejectsReplayWithDifferentSelection(t *testing.T) {
	now := time.Now()
	linked := "mo1"

	cases := []struct {
		name  string
		qty   int
		lines [][]any
	}{
		{
			name:  "quantity changed",
			qty:   6,
			lines: [][]any{{"l1", "mo1", "a", "A", 5, int64(5000), int64(25000)}, {"l2", "mo1", "b", "B", 1, int64(3000), int64(3000)}},
		},
		{
			name:  "medicine swapped",
			qty:   3,
			lines: [][]any{{"l1", "mo1", "a", "A", 2, int64(5000), int64(10000)}, {"l2", "mo1", "c", "C", 1, int64(3000), int64(3000)}},
		},
		{
			name:  "line missing",
			qty:   3,
			lines: [][]any{{"l1", "mo1", "a", "A", 3, int64(5000), int64(15000)}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage, mock := newMockStorage(t)
			defer mock.Close()
			repo := &medicineOrderRepository{storage: storage}

			rows := pgxmockv3.NewRows(lineRowColumns)
			for _, line := range tc.lines {
				rows.AddRow(line...)
			}
			mock.ExpectBegin()
			expectOrderLock(mock, model.OrderStatusOngoing, &linked)
			mock.ExpectQuery("FROM medicine_orders WHERE idempotency_key=").WithArgs("fulfillment:o1").WillReturnRows(
				pgxmockv3.NewRows(headerRowColumns).AddRow("mo1", "o1", "fulfillment:o1", tc.qty, int64(28000), int64(10000), int64(38000), model.PaymentStatusUnverified, nil, now))
			mock.ExpectQuery("FROM medicine_order_lines WHERE medicine_order_id=").WithArgs("mo1").WillReturnRows(rows)
			mock.ExpectRollback()

			order, replayed, err := repo.AttachToOrder(context.Background(), sampleDraft())
			if !errors.Is(err, domainErrors.ErrLinkageConflict) || order != nil || replayed {
				t.Fatalf("expected linkage conflict, got order=%+v replayed=%v err=%v", order, replayed, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations not met: %v", err)
			}
		})
	}
}

func TestInsertLinesRejectsQuantityBeyondColumnRange(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	lines := []model.MedicineOrderLine{{ID: "l1", MedicineID: "a", MedicineName: "A", Quantity: 1<<32 + 1, UnitPrice: 1, TotalPrice: 1}}
	err := insertLines(context.Background(), storage.pool, "mo1", lines)
	if !errors.Is(err, domainErrors.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestMedicineOrderGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &medicineOrderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM medicine_orders WHERE id=").WithArgs("mo1").WillReturnRows(
		pgxmockv3.NewRows(headerRowColumns).AddRow("mo1", "o1", "fulfillment:o1", 1, int64(3000), int64(10000), int64(13000), model.PaymentStatusVerified, &now, now))
	mock.ExpectQuery("FROM medicine_order_lines WHERE medicine_order_id=").WithArgs("mo1").WillReturnRows(
		pgxmockv3.NewRows(lineRowColumns).AddRow("l1", "mo1", "b", "B", 1, int64(3000), int64(3000)))
	order, err := repo.GetByID(context.Background(), "mo1")
	if err != nil || order.IsPaid != model.PaymentStatusVerified || order.PaidAt == nil || len(order.Lines) != 1 {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery("FROM medicine_orders WHERE id=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM medicine_orders WHERE id=").WithArgs("mo2").WillReturnRows(
		pgxmockv3.NewRows(headerRowColumns).AddRow("mo2", "o2", "fulfillment:o2", 1, int64(3000), int64(10000), int64(13000), model.PaymentStatusUnverified, nil, now))
	mock.ExpectQuery("FROM medicine_order_lines WHERE medicine_order_id=").WithArgs("mo2").WillReturnError(errors.New("lines"))
	if _, err := repo.GetByID(context.Background(), "mo2"); err == nil {
		t.Fatal("expected lines error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
