package salesforce

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/allocation"
	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/domain/installment"
	"github.com/flexprice/donorsync/internal/domain/opportunity"
	"github.com/flexprice/donorsync/internal/domain/recurringdonation"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/testutil"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const apiVersion = "v59.0"

type recordedRequest struct {
	Method string
	Path   string
	SOQL   string
	Body   map[string]interface{}
}

// fakeOrg is a minimal Salesforce org: it issues tokens and hands every data
// request to respond
type fakeOrg struct {
	mu       sync.Mutex
	server   *httptest.Server
	logins   int
	token    string
	rejectN  int
	requests []recordedRequest
	respond  func(req recordedRequest) (int, string)
}

func newFakeOrg() *fakeOrg {
	org := &fakeOrg{}
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, org.handleToken)
	mux.HandleFunc("/services/data/", org.handleData)
	org.server = httptest.NewServer(mux)
	return org
}

func (o *fakeOrg) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "password" || r.Form.Get("password") != "secret-pw" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant","error_description":"authentication failure"}`)
		return
	}

	o.mu.Lock()
	o.logins++
	o.token = fmt.Sprintf("token-%d", o.logins)
	token := o.token
	o.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"access_token":%q,"instance_url":%q,"token_type":"Bearer","issued_at":"1710000000000"}`, token, o.server.URL)
}

func (o *fakeOrg) handleData(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	valid := r.Header.Get("Authorization") == "Bearer "+o.token
	if valid && o.rejectN > 0 {
		o.rejectN--
		valid = false
	}
	o.mu.Unlock()

	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`)
		return
	}

	req := recordedRequest{Method: r.Method, Path: r.URL.Path, SOQL: r.URL.Query().Get("q")}
	if body, _ := io.ReadAll(r.Body); len(body) > 0 {
		_ = json.Unmarshal(body, &req.Body)
	}

	o.mu.Lock()
	o.requests = append(o.requests, req)
	respond := o.respond
	o.mu.Unlock()

	status, body := http.StatusOK, `{"totalSize":0,"done":true,"records":[]}`
	if respond != nil {
		status, body = respond(req)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (o *fakeOrg) lastRequest() recordedRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requests[len(o.requests)-1]
}

type SalesforceSuite struct {
	suite.Suite
	org    *fakeOrg
	client Client
	logger *logger.Logger
}

func TestSalesforce(t *testing.T) {
	suite.Run(t, new(SalesforceSuite))
}

func (s *SalesforceSuite) SetupTest() {
	s.org = newFakeOrg()
	s.logger = logger.NewNopLogger()

	cfg := config.GetDefaultConfig()
	cfg.CRM.Provider = types.CRMProviderSalesforce
	cfg.CRM.Salesforce = config.SalesforceConfig{
		LoginURL:     s.org.server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Username:     "integration@example.org",
		Password:     "secret-pw",
		APIVersion:   apiVersion,
		Timeout:      5 * time.Second,
	}
	s.client = NewClient(cfg, s.logger, nil)
}

func (s *SalesforceSuite) TearDownTest() {
	s.org.server.Close()
}

func (s *SalesforceSuite) TestQueryFollowsPaginationWithOneLogin() {
	s.org.respond = func(req recordedRequest) (int, string) {
		if strings.HasSuffix(req.Path, "/query/01gNEXT-2000") {
			return 200, `{"totalSize":3,"done":true,"records":[{"Id":"a03"}]}`
		}
		return 200, `{"totalSize":3,"done":false,"nextRecordsUrl":"/services/data/v59.0/query/01gNEXT-2000","records":[{"Id":"a01"},{"Id":"a02"}]}`
	}

	records, err := s.client.Query(testutil.SetupContext(), "SELECT Id FROM npsp__General_Accounting_Unit__c")
	s.NoError(err)
	s.Len(records, 3)
	s.Equal(1, s.org.logins)
	s.Len(s.org.requests, 2)
	s.Equal("/services/data/"+apiVersion+"/query", s.org.requests[0].Path)
}

func (s *SalesforceSuite) TestExpiredSessionLogsInAgain() {
	ctx := testutil.SetupContext()
	_, err := s.client.Query(ctx, "SELECT Id FROM Contact")
	s.NoError(err)

	s.org.mu.Lock()
	s.org.rejectN = 1
	s.org.mu.Unlock()

	_, err = s.client.Query(ctx, "SELECT Id FROM Contact")
	s.NoError(err)
	s.Equal(2, s.org.logins)
}

func (s *SalesforceSuite) TestLoginFailure() {
	cfg := config.GetDefaultConfig()
	cfg.CRM.Salesforce = config.SalesforceConfig{
		LoginURL:   s.org.server.URL,
		Username:   "integration@example.org",
		Password:   "wrong",
		APIVersion: apiVersion,
	}
	client := NewClient(cfg, s.logger, nil)

	_, err := client.Query(testutil.SetupContext(), "SELECT Id FROM Contact")
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
}

func (s *SalesforceSuite) TestDonorRepository() {
	repo := NewDonorRepository(s.client, s.logger)
	ctx := testutil.SetupContext()

	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":2,"done":true,"records":[
			{"attributes":{"type":"Contact"},"Id":"003A","OwnerId":"005A","Email":"o'brien@example.org","FirstName":"Dana","LastName":"Levi","MobilePhone":"050-1234567","LeadSource":"Web","CreatedDate":"2024-03-10T08:15:00.000+0000"},
			{"attributes":{"type":"Contact"},"Id":"003B","OwnerId":"005B","Email":"o'brien@example.org","FirstName":"Noa","LastName":"Levi","MobilePhone":null,"CreatedDate":null}
		]}`
	}

	donors, err := repo.ListByEmail(ctx, "o'brien@example.org")
	s.NoError(err)
	s.Require().Len(donors, 2)
	s.Equal("003A", donors[0].ID)
	s.Equal("005A", donors[0].OwnerID)
	s.Equal(types.LeadSourceWeb, donors[0].LeadSource)
	s.Equal(2024, donors[0].CreatedAt.Year())
	s.Empty(donors[1].MobilePhone)
	s.Contains(s.org.lastRequest().SOQL, `WHERE Email = 'o\'brien@example.org'`)

	s.org.respond = func(req recordedRequest) (int, string) {
		return 201, `{"id":"003NEW","success":true,"errors":[]}`
	}
	d := &donor.Donor{Email: "new@example.org", FirstName: "New", LastName: "Donor", LeadSource: types.LeadSourceWeb}
	s.NoError(repo.Create(ctx, d))
	s.Equal("003NEW", d.ID)

	created := s.org.lastRequest()
	s.Equal(http.MethodPost, created.Method)
	s.Equal("/services/data/"+apiVersion+"/sobjects/Contact/", created.Path)
	s.Equal("Web", created.Body["LeadSource"])
	s.NotContains(created.Body, "MobilePhone")
	s.NotContains(created.Body, "OwnerId")

	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":0,"done":true,"records":[]}`
	}
	_, err = repo.Get(ctx, "003MISSING")
	s.True(ierr.IsNotFound(err))
}

func (s *SalesforceSuite) TestDuplicateValueBecomesConstraintViolation() {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "commitment_id_named_in_message",
			body:     `[{"message":"duplicate value found: npsp__CommitmentId__c duplicates value on record with id: a09000000000001","errorCode":"DUPLICATE_VALUE","fields":[]}]`,
			expected: types.ConstraintFieldExternalOrderID,
		},
		{
			name:     "invoice_number_in_fields",
			body:     `[{"message":"duplicate value found","errorCode":"DUPLICATE_VALUE","fields":["Cardcom_Invoice_Number__c"]}]`,
			expected: types.ConstraintFieldExternalInvoiceNumber,
		},
		{
			name:     "unknown_unique_field",
			body:     `[{"message":"duplicate value found","errorCode":"DUPLICATE_VALUE","fields":["External_Id__c"]}]`,
			expected: "External_Id__c",
		},
	}

	repo := NewRecurringDonationRepository(s.client, s.logger)
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.org.respond = func(req recordedRequest) (int, string) {
				return 400, tc.body
			}
			err := repo.Create(testutil.SetupContext(), &recurringdonation.RecurringDonation{ExternalOrderID: "R1"})
			s.Error(err)
			s.True(ierr.IsAlreadyExists(err))
			field, ok := ierr.ConstraintField(err)
			s.True(ok)
			s.Equal(tc.expected, field)
		})
	}
}

func (s *SalesforceSuite) TestOtherErrorsAreHTTPClientErrors() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 400, `[{"message":"Required fields are missing: [LastName]","errorCode":"REQUIRED_FIELD_MISSING","fields":["LastName"]}]`
	}
	err := NewDonorRepository(s.client, s.logger).Create(testutil.SetupContext(), &donor.Donor{Email: "x@example.org"})
	s.Error(err)
	s.True(ierr.IsHTTPClient(err))
	_, isConstraint := ierr.ConstraintField(err)
	s.False(isConstraint)
}

func (s *SalesforceSuite) TestRecurringDonationCreate() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 201, `{"id":"a09RD","success":true,"errors":[]}`
	}

	rd := &recurringdonation.RecurringDonation{
		Name:                "Recurring Donation (2024-03-10) - Dana Levi",
		DonorID:             "003A",
		OwnerID:             "005A",
		Amount:              decimal.NewFromInt(100),
		ExternalOrderID:     "R1",
		CardLast4:           "4242",
		CardExpirationMonth: 2,
		CardExpirationYear:  27,
		InstallmentCount:    12,
		InstallmentPeriod:   types.InstallmentPeriodMonthly,
		DayOfMonth:          types.DefaultDayOfMonth,
		ScheduleType:        types.ScheduleTypeMultiplyBy,
		PaymentMethod:       types.PaymentMethodCreditCard,
		Status:              types.RecurringDonationStatusActive,
	}
	s.NoError(NewRecurringDonationRepository(s.client, s.logger).Create(testutil.SetupContext(), rd))
	s.Equal("a09RD", rd.ID)

	body := s.org.lastRequest().Body
	s.Equal("R1", body[FieldCommitmentID])
	s.Equal(float64(12), body["npe03__Installments__c"])
	s.Equal("2", body["npsp__CardExpirationMonth__c"])
	s.Equal("27", body["npsp__CardExpirationYear__c"])
	s.Equal("Multiply By", body["npe03__Schedule_Type__c"])
	s.Equal("003A", body["npe03__Contact__c"])
}

func (s *SalesforceSuite) TestOpportunityCreate() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 201, `{"id":"006OPP","success":true,"errors":[]}`
	}
	exp := opportunity.CardExpiration(2, 24)
	opp := &opportunity.Opportunity{
		Name:                  "Donation (10/03/2024) - Dana Levi",
		DonorID:               "003A",
		Amount:                decimal.NewFromInt(50),
		CloseDate:             "2024-03-10",
		Stage:                 types.OpportunityStageClosedWon,
		ExternalInvoiceNumber: "INV-9",
		CreditCardExpiration:  &exp,
		PaymentMethod:         types.PaymentMethodCreditCard,
		SuppressAutoInvoice:   true,
	}
	s.NoError(NewOpportunityRepository(s.client, s.logger).Create(testutil.SetupContext(), opp))

	body := s.org.lastRequest().Body
	s.Equal("006OPP", opp.ID)
	s.Equal("3", body["Payment_Method__c"])
	s.Equal("2024-02-29", body["CreditCardExpirationDate__c"])
	s.Equal("INV-9", body[FieldInvoiceNumber])
	s.Equal(true, body[fieldSuppressAutoInvoice])
	s.Equal("Closed Won", body["StageName"])
}

func (s *SalesforceSuite) TestSetInvoiceNumber() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 204, ""
	}
	s.NoError(NewOpportunityRepository(s.client, s.logger).SetInvoiceNumber(testutil.SetupContext(), "006A", "INV-1"))

	req := s.org.lastRequest()
	s.Equal(http.MethodPatch, req.Method)
	s.Equal("/services/data/"+apiVersion+"/sobjects/Opportunity/006A", req.Path)
	s.Equal(map[string]interface{}{FieldInvoiceNumber: "INV-1"}, req.Body)
}

func (s *SalesforceSuite) TestPaymentRepository() {
	repo := NewPaymentRepository(s.client, s.logger)
	ctx := testutil.SetupContext()

	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":1,"done":true,"records":[
			{"Id":"a0P1","npe01__Opportunity__c":"006A","npe01__Payment_Amount__c":100,"npe01__Paid__c":false,
			 "npe01__Opportunity__r":{"npsp__Recurring_Donation_Installment_Number__c":2}}
		]}`
	}

	payments, err := repo.ListUnpaid(ctx, "R1", 1)
	s.NoError(err)
	s.Require().Len(payments, 1)
	s.Equal("a0P1", payments[0].ID)
	s.Equal("006A", payments[0].OpportunityID)
	s.Equal(2, payments[0].InstallmentNumber)
	s.Equal("R1", payments[0].ExternalOrderID)
	s.True(decimal.NewFromInt(100).Equal(payments[0].Amount))

	soql := s.org.lastRequest().SOQL
	s.Contains(soql, "npe01__Paid__c = false")
	s.Contains(soql, "npe01__Opportunity__r.npe03__Recurring_Donation__r.npsp__CommitmentId__c = 'R1'")
	s.True(strings.HasSuffix(soql, "ORDER BY npe01__Opportunity__r.npsp__Recurring_Donation_Installment_Number__c ASC LIMIT 1"))

	s.org.respond = func(req recordedRequest) (int, string) {
		return 204, ""
	}
	paidAt := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)
	s.NoError(repo.MarkPaid(ctx, installment.NewPaidUpdate(payments[0], paidAt)))

	req := s.org.lastRequest()
	s.Equal(http.MethodPatch, req.Method)
	s.Equal("/services/data/"+apiVersion+"/sobjects/npe01__OppPayment__c/a0P1", req.Path)
	s.Equal(map[string]interface{}{
		"npe01__Paid__c":           true,
		"npe01__Payment_Method__c": "3",
		"npe01__Payment_Date__c":   "2024-04-10",
	}, req.Body)
}

func (s *SalesforceSuite) TestFieldMappingRepository() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":1,"done":true,"records":[
			{"attributes":{"type":"CardCom__c"},"ContactIdCustomFieldNumber__c":"05","OwnerIdCustomFieldNumber__c":7,"ProjectCustomFieldNumber__c":null}
		]}`
	}

	mapping, err := NewFieldMappingRepository(s.client, s.logger).Get(testutil.SetupContext())
	s.NoError(err)
	s.Equal("Custom05", mapping[types.CanonicalContactID])
	s.Equal("Custom7", mapping[types.CanonicalOwnerID])
	_, hasProject := mapping[types.CanonicalProject]
	s.False(hasProject)
	s.Contains(s.org.lastRequest().SOQL, "FROM CardCom__c LIMIT 1")
}

func (s *SalesforceSuite) TestFundRepository() {
	repo := NewFundRepository(s.client, s.logger)
	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":2,"done":true,"records":[{"Id":"a0G1","Name":"General","npsp__Active__c":true},{"Id":"a0G2","Name":"Scholarships","npsp__Active__c":true}]}`
	}

	units, err := repo.ListActive(testutil.SetupContext())
	s.NoError(err)
	s.Len(units, 2)
	s.Equal("Scholarships", units[1].Name)
	s.Contains(s.org.lastRequest().SOQL, "WHERE npsp__Active__c = true")
}

func (s *SalesforceSuite) TestFundGetByNameAndActivate() {
	repo := NewFundRepository(s.client, s.logger)
	ctx := testutil.SetupContext()

	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":1,"done":true,"records":[{"Id":"a0G9","Name":"Orphans","npsp__Active__c":false}]}`
	}
	unit, err := repo.GetByName(ctx, "Orphans")
	s.Require().NoError(err)
	s.Equal("a0G9", unit.ID)
	s.False(unit.Active)
	s.Contains(s.org.lastRequest().SOQL, "WHERE Name = 'Orphans'")

	s.org.respond = func(req recordedRequest) (int, string) {
		return 204, ""
	}
	s.NoError(repo.Activate(ctx, "a0G9"))
	req := s.org.lastRequest()
	s.Equal(http.MethodPatch, req.Method)
	s.True(strings.HasSuffix(req.Path, "/sobjects/"+SObjectAccountingUnit+"/a0G9"))
	s.Equal(true, req.Body["npsp__Active__c"])

	s.org.respond = func(req recordedRequest) (int, string) {
		return 200, `{"totalSize":0,"done":true,"records":[]}`
	}
	_, err = repo.GetByName(ctx, "Unknown")
	s.True(ierr.IsNotFound(err))
}

func (s *SalesforceSuite) TestNotFoundStatus() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 404, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`
	}
	err := NewOpportunityRepository(s.client, s.logger).SetInvoiceNumber(testutil.SetupContext(), "006GONE", "INV-1")
	s.True(ierr.IsNotFound(err))
}

func (s *SalesforceSuite) TestAllocationCreate() {
	s.org.respond = func(req recordedRequest) (int, string) {
		return 201, `{"id":"a0A1","success":true,"errors":[]}`
	}

	a := &allocation.Allocation{
		FundID:              "a0G1",
		RecurringDonationID: "a09RD",
		Amount:              decimal.NewFromInt(100),
		Percent:             allocation.FullPercent,
	}
	s.NoError(NewAllocationRepository(s.client, s.logger).Create(testutil.SetupContext(), a))
	s.Equal("a0A1", a.ID)

	body := s.org.lastRequest().Body
	s.Equal(float64(100), body["npsp__Percent__c"])
	s.Equal("a09RD", body["npsp__Recurring_Donation__c"])
	s.NotContains(body, "npsp__Opportunity__c")
	s.NotContains(body, "OwnerId")
}
