package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/supplyhub/internal/modules/contract"
	"github.com/georgemunganga/supplyhub/internal/modules/evaluation"
	"github.com/georgemunganga/supplyhub/internal/modules/qualification"
	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
)

func TestMemoryStorageCascadesSupplierDelete(t *testing.T) {
	ctx := context.Background()
	repos := memoryRepositories(database.UTC)

	sup, err := supplier.New(supplier.Input{
		Name: "华东包装", LegalName: "华东包装材料有限公司", LegalAddress: "上海",
		RegistrationNumber: "REG-1", TaxNumber: "TAX-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	keep, err := supplier.New(supplier.Input{
		Name: "华南物流", LegalName: "华南物流有限公司", LegalAddress: "广州",
		RegistrationNumber: "REG-2", TaxNumber: "TAX-2",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []*supplier.Supplier{sup, keep} {
		if err := repos.suppliers.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	contact, _ := supplier.NewContact(sup.ID, supplier.ContactInput{Name: "张三"})
	if err := repos.contacts.Create(ctx, contact); err != nil {
		t.Fatal(err)
	}
	qual, _ := qualification.New(qualification.Input{
		SupplierID: sup.ID, Name: "营业执照", Type: "BUSINESS_LICENSE", CertificateNumber: "C-1",
	})
	if err := repos.qualifications.Create(ctx, qual); err != nil {
		t.Fatal(err)
	}
	con, _ := contract.New(contract.Input{
		SupplierID: sup.ID, Number: "HT-1", Title: "采购合同", Type: contract.TypePurchase,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(1000),
	})
	if err := repos.contracts.Create(ctx, con); err != nil {
		t.Fatal(err)
	}
	eval, _ := evaluation.New(evaluation.Input{SupplierID: sup.ID, Title: "季度评估", Period: "2024-Q1", Evaluator: "采购部"})
	if err := repos.evaluations.Create(ctx, eval); err != nil {
		t.Fatal(err)
	}
	kept, _ := evaluation.New(evaluation.Input{SupplierID: keep.ID, Title: "季度评估", Period: "2024-Q1", Evaluator: "采购部"})
	if err := repos.evaluations.Create(ctx, kept); err != nil {
		t.Fatal(err)
	}

	if err := repos.suppliers.Delete(ctx, sup.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := repos.contacts.GetByID(ctx, contact.ID); !errors.Is(err, supplier.ErrContactNotFound) {
		t.Errorf("contact err = %v", err)
	}
	if _, err := repos.qualifications.GetByID(ctx, qual.ID); !errors.Is(err, qualification.ErrNotFound) {
		t.Errorf("qualification err = %v", err)
	}
	if _, err := repos.contracts.GetByID(ctx, con.ID); !errors.Is(err, contract.ErrNotFound) {
		t.Errorf("contract err = %v", err)
	}
	if _, err := repos.evaluations.GetByID(ctx, eval.ID); !errors.Is(err, evaluation.ErrNotFound) {
		t.Errorf("evaluation err = %v", err)
	}
	if _, err := repos.evaluations.GetByID(ctx, kept.ID); err != nil {
		t.Errorf("other supplier's evaluation removed: %v", err)
	}
}
