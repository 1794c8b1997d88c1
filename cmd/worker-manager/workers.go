// cmd/worker-manager/workers.go
package main

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/accounting"
	"agency-workers/internal/common/aws"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/config"
	"agency-workers/internal/common/database"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/observability"
	"agency-workers/internal/directory"
	"agency-workers/internal/documents"
	"agency-workers/internal/reconciliation"

	emailinvoice "agency-workers/internal/workers/invoicing/email-invoice"
	exportinvoiceaccounting "agency-workers/internal/workers/invoicing/export-invoice-accounting"
	findinvoiceablestudents "agency-workers/internal/workers/invoicing/find-invoiceable-students"
	generateinvoice "agency-workers/internal/workers/invoicing/generate-invoice"
	markinvoicepaid "agency-workers/internal/workers/invoicing/mark-invoice-paid"
	renderinvoicepdf "agency-workers/internal/workers/invoicing/render-invoice-pdf"
	loadreferencedata "agency-workers/internal/workers/reference/load-reference-data"
	findremittablestudents "agency-workers/internal/workers/remittance/find-remittable-students"
	generateremit "agency-workers/internal/workers/remittance/generate-remit"
	markremitpaid "agency-workers/internal/workers/remittance/mark-remit-paid"
	renderremitpdf "agency-workers/internal/workers/remittance/render-remit-pdf"
	exportstudentsxlsx "agency-workers/internal/workers/students/export-students-xlsx"
	importrollcsv "agency-workers/internal/workers/students/import-roll-csv"
	reviewrollupdate "agency-workers/internal/workers/students/review-roll-update"
)

type dependencies struct {
	api        *agencyapi.Client
	cache      *agencyapi.Cache
	directory  *directory.Directory
	audit      *reconciliation.Store
	accounting *accounting.Client
	mailer     *aws.SESClient
	events     generateinvoice.EventPublisher
	locker     *database.RedisClient
	logos      *documents.LogoLoader
	obs        *observability.Observability
	log        logger.Logger
}

func registerWorkers(w *camunda.Workers, cfg *config.Config, d *dependencies) {
	start := func(taskType string, handle worker.JobHandler) {
		w.Start(taskType, cfg.GetWorkerConfig(taskType), handle)
	}

	// reference
	start(loadreferencedata.TaskType, loadreferencedata.NewHandler(loadreferencedata.LoadConfig(cfg), d.api, d.cache, d.log).Handle)

	// invoicing
	start(findinvoiceablestudents.TaskType, findinvoiceablestudents.NewHandler(findinvoiceablestudents.LoadConfig(cfg), d.api, d.log).Handle)
	start(generateinvoice.TaskType, generateinvoice.NewHandler(generateinvoice.LoadConfig(cfg), d.api, d.audit, d.events, d.log).Handle)
	start(renderinvoicepdf.TaskType, renderinvoicepdf.NewHandler(renderinvoicepdf.HandlerOptions{
		Config:        renderinvoicepdf.LoadConfig(cfg),
		API:           d.api,
		Audit:         d.audit,
		Logos:         d.logos,
		Observability: d.obs,
		Logger:        d.log,
	}).Handle)
	start(markinvoicepaid.TaskType, markinvoicepaid.NewHandler(markinvoicepaid.LoadConfig(cfg), d.api, d.log).Handle)
	start(exportinvoiceaccounting.TaskType, exportinvoiceaccounting.NewHandler(exportinvoiceaccounting.LoadConfig(cfg), d.api, d.accounting, d.log).Handle)
	if d.mailer != nil {
		start(emailinvoice.TaskType, emailinvoice.NewHandler(emailinvoice.HandlerOptions{
			Config:        emailinvoice.LoadConfig(cfg),
			API:           d.api,
			Mailer:        d.mailer,
			Logos:         d.logos,
			Observability: d.obs,
			Logger:        d.log,
		}).Handle)
	} else {
		d.log.Warn("SES disabled, email worker not started", map[string]interface{}{"taskType": emailinvoice.TaskType})
	}

	// remittance
	start(findremittablestudents.TaskType, findremittablestudents.NewHandler(findremittablestudents.LoadConfig(cfg), d.api, d.log).Handle)
	start(generateremit.TaskType, generateremit.NewHandler(generateremit.LoadConfig(cfg), d.api, d.audit, d.events, d.log).Handle)
	start(renderremitpdf.TaskType, renderremitpdf.NewHandler(renderremitpdf.HandlerOptions{
		Config:        renderremitpdf.LoadConfig(cfg),
		API:           d.api,
		Audit:         d.audit,
		Logos:         d.logos,
		Observability: d.obs,
		Logger:        d.log,
	}).Handle)
	start(markremitpaid.TaskType, markremitpaid.NewHandler(markremitpaid.LoadConfig(cfg), d.api, d.log).Handle)

	// students
	start(importrollcsv.TaskType, importrollcsv.NewHandler(importrollcsv.LoadConfig(cfg), d.api, d.directory, d.locker, d.log).Handle)
	start(reviewrollupdate.TaskType, reviewrollupdate.NewHandler(reviewrollupdate.LoadConfig(cfg), d.api, d.log).Handle)
	start(exportstudentsxlsx.TaskType, exportstudentsxlsx.NewHandler(exportstudentsxlsx.LoadConfig(cfg), d.api, d.obs, d.log).Handle)
}
