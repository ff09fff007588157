package services

import (
  "context"
  "errors"
  "strconv"
  "testing"
  "time"

  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/mock"
  "github.com/stretchr/testify/require"
  "gorm.io/gorm"

  "github.com/autolog-org/autolog-backend/internal/logger"
  "github.com/autolog-org/autolog-backend/internal/types"
)

// ----------------------------------------------------------------
// Mocks
// ----------------------------------------------------------------

type MockVehicleRepo struct {
  mock.Mock
}

func (m *MockVehicleRepo) Create(ctx context.Context, tx *gorm.DB, vehicles []types.Vehicle) ([]types.Vehicle, error) {
  args := m.Called(ctx, tx, vehicles)
  if args.Get(0) == nil {
    return nil, args.Error(1)
  }
  return args.Get(0).([]types.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) GetByPlateCandidates(ctx context.Context, tx *gorm.DB, candidates []string) ([]types.Vehicle, error) {
  args := m.Called(ctx, tx, candidates)
  if args.Get(0) == nil {
    return nil, args.Error(1)
  }
  return args.Get(0).([]types.Vehicle), args.Error(1)
}

type MockVerificationCodeRepo struct {
  mock.Mock
}

func (m *MockVerificationCodeRepo) Create(ctx context.Context, tx *gorm.DB, codes []types.VerificationCode) ([]types.VerificationCode, error) {
  args := m.Called(ctx, tx, codes)
  if args.Get(0) == nil {
    return nil, args.Error(1)
  }
  return args.Get(0).([]types.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepo) GetLatestValid(ctx context.Context, tx *gorm.DB, plateNumber string, now time.Time) (*types.VerificationCode, error) {
  args := m.Called(ctx, tx, plateNumber, now)
  if args.Get(0) == nil {
    return nil, args.Error(1)
  }
  return args.Get(0).(*types.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepo) Consume(ctx context.Context, tx *gorm.DB, codeID uuid.UUID) error {
  args := m.Called(ctx, tx, codeID)
  return args.Error(0)
}

type MockTextService struct {
  mock.Mock
}

func (m *MockTextService) SendText(ctx context.Context, toNumber string, body string) error {
  args := m.Called(ctx, toNumber, body)
  return args.Error(0)
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(ctx context.Context, key string) (bool, error) {
  return false, nil
}

// ----------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------

func testLogger(t *testing.T) *logger.Logger {
  log, err := logger.New("development")
  require.NoError(t, err)
  return log
}

func ownedVehicle(plate, phone string) types.Vehicle {
  return types.Vehicle{
    ID:           uuid.New(),
    OwnerID:      uuid.New(),
    PlateNumber:  plate,
    Make:         "Toyota",
    VehicleModel: "Corolla",
    Year:         "2019",
    Color:        "Silver",
    Owner: &types.Member{
      ID:          uuid.New(),
      FullName:    "Ama Mensah",
      PhoneNumber: phone,
    },
  }
}

// ----------------------------------------------------------------
// RequestCode
// ----------------------------------------------------------------

func TestRequestCodeSuccess(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  vehicle := ownedVehicle("AS-123-24", "0241234567")
  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, []string{"AS-123-24", "AS 123 24"}).
    Return([]types.Vehicle{vehicle}, nil)

  var stored types.VerificationCode
  codeRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("[]types.VerificationCode")).
    Run(func(args mock.Arguments) {
      codes := args.Get(2).([]types.VerificationCode)
      require.Len(t, codes, 1)
      stored = codes[0]
    }).
    Return([]types.VerificationCode{}, nil)
  var smsBody string
  textService.On("SendText", mock.Anything, "0241234567", mock.AnythingOfType("string")).
    Run(func(args mock.Arguments) {
      smsBody = args.Get(2).(string)
    }).
    Return(nil)

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, nil, 10*time.Minute)
  issuance, err := svc.RequestCode(context.Background(), "as-123-24")
  require.NoError(t, err)

  assert.Equal(t, "******4567", issuance.PhoneLabel)
  assert.Equal(t, "Toyota", issuance.Vehicle.Make)
  assert.Equal(t, "AS-123-24", issuance.Vehicle.Plate)

  // The persisted record carries the canonical plate and a 4-digit code.
  assert.Equal(t, "AS-123-24", stored.PlateNumber)
  assert.Equal(t, "0241234567", stored.PhoneNumber)
  assert.False(t, stored.Consumed)
  n, convErr := strconv.Atoi(stored.Code)
  require.NoError(t, convErr)
  assert.GreaterOrEqual(t, n, 1000)
  assert.LessOrEqual(t, n, 9999)
  assert.WithinDuration(t, time.Now().Add(10*time.Minute), stored.ExpiresAt, 5*time.Second)

  // The SMS greets the owner by name and carries the stored code.
  assert.Contains(t, smsBody, "Hi Ama Mensah")
  assert.Contains(t, smsBody, stored.Code)

  textService.AssertExpectations(t)
  codeRepo.AssertExpectations(t)
}

func TestRequestCodeSmsGreetsBusinessName(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  vehicle := ownedVehicle("GR 1234-20", "0209876543")
  garage := "Kwame's Garage & Towing"
  vehicle.Owner.BusinessName = &garage
  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.Vehicle{vehicle}, nil)
  codeRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.VerificationCode{}, nil)

  var smsBody string
  textService.On("SendText", mock.Anything, "0209876543", mock.AnythingOfType("string")).
    Run(func(args mock.Arguments) {
      smsBody = args.Get(2).(string)
    }).
    Return(nil)

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, nil, 10*time.Minute)
  _, err := svc.RequestCode(context.Background(), "GR 1234-20")
  require.NoError(t, err)

  // A business name on file takes precedence over the personal name.
  assert.Contains(t, smsBody, "Hi Kwame's Garage & Towing")
}

func TestRequestCodeMissingPlate(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, new(MockVerificationCodeRepo), new(MockTextService), nil, 10*time.Minute)
  _, err := svc.RequestCode(context.Background(), "   ")
  assert.ErrorIs(t, err, types.ErrMissingInput)
  vehicleRepo.AssertNotCalled(t, "GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCodeVehicleNotFound(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.Vehicle{}, nil)

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, nil, 10*time.Minute)
  _, err := svc.RequestCode(context.Background(), "ZZ-999-99")
  assert.ErrorIs(t, err, types.ErrVehicleNotFound)
  codeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCodeOwnerPhoneMissing(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  vehicle := ownedVehicle("AS-123-24", "  ")
  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.Vehicle{vehicle}, nil)

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, nil, 10*time.Minute)
  _, err := svc.RequestCode(context.Background(), "AS-123-24")
  assert.ErrorIs(t, err, types.ErrOwnerContactMissing)

  // No code may be persisted when issuance cannot deliver.
  codeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
  textService.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCodeStorageFailureIsFatal(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  vehicle := ownedVehicle("AS-123-24", "0241234567")
  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.Vehicle{vehicle}, nil)
  codeRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
    Return(nil, errors.New("connection refused"))

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, nil, 10*time.Minute)
  _, err := svc.RequestCode(context.Background(), "AS-123-24")
  require.Error(t, err)

  // The code was never durably stored, so nothing may be reported as sent.
  textService.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCodeSmsFailureIsNotFatal(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  vehicle := ownedVehicle("AS-123-24", "0241234567")
  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.Vehicle{vehicle}, nil)
  codeRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
    Return([]types.VerificationCode{}, nil)
  textService.On("SendText", mock.Anything, mock.Anything, mock.Anything).
    Return(errors.New("twilio unavailable"))

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, nil, 10*time.Minute)
  issuance, err := svc.RequestCode(context.Background(), "AS-123-24")
  require.NoError(t, err)
  assert.Equal(t, "******4567", issuance.PhoneLabel)
}

func TestRequestCodeRateLimited(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)
  codeRepo := new(MockVerificationCodeRepo)
  textService := new(MockTextService)

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, codeRepo, textService, denyAllLimiter{}, 10*time.Minute)
  _, err := svc.RequestCode(context.Background(), "AS-123-24")
  assert.ErrorIs(t, err, types.ErrRateLimited)
  vehicleRepo.AssertNotCalled(t, "GetByPlateCandidates", mock.Anything, mock.Anything, mock.Anything)
}

// ----------------------------------------------------------------
// ResolveVehicle
// ----------------------------------------------------------------

func TestResolveVehicleExactFormWinsOverFallback(t *testing.T) {
  vehicleRepo := new(MockVehicleRepo)

  exact := ownedVehicle("GR1234-20", "0241111111")
  fallback := ownedVehicle("GR1234 20", "0242222222")
  // Store returns matches in an order favoring the fallback form.
  vehicleRepo.On("GetByPlateCandidates", mock.Anything, mock.Anything, []string{"GR1234-20", "GR1234 20"}).
    Return([]types.Vehicle{fallback, exact}, nil)

  svc := NewVerificationService(nil, testLogger(t), vehicleRepo, new(MockVerificationCodeRepo), new(MockTextService), nil, 10*time.Minute)
  vehicle, err := svc.ResolveVehicle(context.Background(), "gr1234-20")
  require.NoError(t, err)
  assert.Equal(t, exact.ID, vehicle.ID)
}

// ----------------------------------------------------------------
// MatchValidCode
// ----------------------------------------------------------------

func TestMatchValidCodeSuccess(t *testing.T) {
  codeRepo := new(MockVerificationCodeRepo)
  record := &types.VerificationCode{
    ID:          uuid.New(),
    PlateNumber: "AS-123-24",
    Code:        "4821",
    ExpiresAt:   time.Now().Add(5 * time.Minute),
  }
  codeRepo.On("GetLatestValid", mock.Anything, mock.Anything, "AS-123-24", mock.AnythingOfType("time.Time")).
    Return(record, nil)

  svc := NewVerificationService(nil, testLogger(t), new(MockVehicleRepo), codeRepo, new(MockTextService), nil, 10*time.Minute)
  matched, err := svc.MatchValidCode(context.Background(), "as-123-24", " 4821 ")
  require.NoError(t, err)
  assert.Equal(t, record.ID, matched.ID)
}

func TestMatchValidCodeWrongCode(t *testing.T) {
  codeRepo := new(MockVerificationCodeRepo)
  record := &types.VerificationCode{ID: uuid.New(), PlateNumber: "AS-123-24", Code: "4821"}
  codeRepo.On("GetLatestValid", mock.Anything, mock.Anything, "AS-123-24", mock.AnythingOfType("time.Time")).
    Return(record, nil)

  svc := NewVerificationService(nil, testLogger(t), new(MockVehicleRepo), codeRepo, new(MockTextService), nil, 10*time.Minute)
  _, err := svc.MatchValidCode(context.Background(), "AS-123-24", "0000")
  assert.ErrorIs(t, err, types.ErrInvalidOrExpiredCode)
}

func TestMatchValidCodeNoValidCodeLeft(t *testing.T) {
  // Expired and consumed codes never come back from GetLatestValid; both
  // collapse into the same generic failure.
  codeRepo := new(MockVerificationCodeRepo)
  codeRepo.On("GetLatestValid", mock.Anything, mock.Anything, "AS-123-24", mock.AnythingOfType("time.Time")).
    Return(nil, nil)

  svc := NewVerificationService(nil, testLogger(t), new(MockVehicleRepo), codeRepo, new(MockTextService), nil, 10*time.Minute)
  _, err := svc.MatchValidCode(context.Background(), "AS-123-24", "4821")
  assert.ErrorIs(t, err, types.ErrInvalidOrExpiredCode)
}

func TestMatchValidCodeMissingInput(t *testing.T) {
  codeRepo := new(MockVerificationCodeRepo)
  svc := NewVerificationService(nil, testLogger(t), new(MockVehicleRepo), codeRepo, new(MockTextService), nil, 10*time.Minute)
  _, err := svc.MatchValidCode(context.Background(), "", "")
  assert.ErrorIs(t, err, types.ErrInvalidOrExpiredCode)
  codeRepo.AssertNotCalled(t, "GetLatestValid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ----------------------------------------------------------------
// maskPhone
// ----------------------------------------------------------------

func TestMaskPhone(t *testing.T) {
  assert.Equal(t, "******4567", maskPhone("0241234567"))
  assert.Equal(t, "*********4567", maskPhone("+233241234567"))
  assert.Equal(t, "***", maskPhone("123"))
}
