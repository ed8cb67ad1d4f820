package routehandlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evolvetech/opsdash/webutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
	calls   int
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, htmlBody
	return f.err
}

func TestHandleRequestOTP_Success(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	m := &fakeMailer{}
	handler := webutil.MakeHandler(NewPasswordResetHandler(repo, m).HandleRequestOTP)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET otp = $1 WHERE email = $2")).
		WithArgs(sqlmock.AnyArg(), "a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postJSON(handler, `{"email":"a@b.com"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"OTP sent to your email!"}`, rr.Body.String())

	assert.Equal(t, 1, m.calls)
	assert.Equal(t, "a@b.com", m.to)
	assert.Equal(t, "Your OTP Code | Evolve Tech Innovations", m.subject)
	assert.Regexp(t, `<strong>\d{6}</strong>`, m.body)
	assert.Contains(t, m.body, "valid for 10 minutes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRequestOTP_SendFailureKeepsStoredOTP(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	m := &fakeMailer{err: errors.New("provider down")}
	handler := webutil.MakeHandler(NewPasswordResetHandler(repo, m).HandleRequestOTP)

	// The OTP update runs before the send; a send failure does not roll it back.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET otp = $1 WHERE email = $2")).
		WithArgs(sqlmock.AnyArg(), "a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postJSON(handler, `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to send OTP. Try again later."}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet(), "OTP must be persisted even when the send fails")
}

func TestHandleRequestOTP_UnknownEmailStillSends(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	m := &fakeMailer{}
	handler := webutil.MakeHandler(NewPasswordResetHandler(repo, m).HandleRequestOTP)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET otp = $1 WHERE email = $2")).
		WithArgs(sqlmock.AnyArg(), "nobody@b.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rr := postJSON(handler, `{"email":"nobody@b.com"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, m.calls)
}

func TestHandleVerifyOTP_Valid(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	handler := webutil.MakeHandler(NewPasswordResetHandler(repo, &fakeMailer{}).HandleVerifyOTP)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1 AND otp = $2")).
		WithArgs("a@b.com", "123456").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	rr := postJSON(handler, `{"email":"a@b.com","otp":"123456"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"OTP verified"}`, rr.Body.String())
}

func TestHandleVerifyOTP_Invalid(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	handler := webutil.MakeHandler(NewPasswordResetHandler(repo, &fakeMailer{}).HandleVerifyOTP)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1 AND otp = $2")).
		WithArgs("a@b.com", "000000").
		WillReturnError(sql.ErrNoRows)

	rr := postJSON(handler, `{"email":"a@b.com","otp":"000000"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid OTP"}`, rr.Body.String())
}

func TestHandleResetPassword(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	handler := webutil.MakeHandler(NewPasswordResetHandler(repo, &fakeMailer{}).HandleResetPassword)

	// The new hash is salted, so only the email argument is pinned.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password = $1 WHERE email = $2")).
		WithArgs(sqlmock.AnyArg(), "a@b.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := postJSON(handler, `{"email":"a@b.com","password":"new-pw"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Password reset successfully"}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
