package utils

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"go.uber.org/zap"
)

const otpTemplate = `From: %s
To: %s
Subject: KYC Hub - OTP Verification

Dear user,

Your One-Time Password (OTP) for verifying your email is:

OTP: %s

The code expires in %d minutes. Please enter it to complete your verification.

Thank you,
KYC Hub Team
`

// SMTPMailer sends OTP mails through an authenticated SMTP relay
type SMTPMailer struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	TTLMinutes int

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host string, port int, username, password, from string, ttlMinutes int) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		Host:       host,
		Port:       port,
		Username:   username,
		Password:   password,
		From:       from,
		TTLMinutes: ttlMinutes,
		send:       smtp.SendMail,
	}
}

func (m *SMTPMailer) SendOTP(_ context.Context, toEmail, otp string) error {
	msg := fmt.Sprintf(otpTemplate, m.From, toEmail, otp, m.TTLMinutes)
	addr := net.JoinHostPort(m.Host, fmt.Sprint(m.Port))
	if err := m.send(addr, smtp.PlainAuth("", m.Username, m.Password, m.Host), m.From, []string{toEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// LogMailer writes the OTP to the debug log instead of sending mail.
// Used in development when mail is disabled.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) SendOTP(_ context.Context, toEmail, otp string) error {
	m.Log.Debug("otp mail not sent, mail disabled", zap.String("to", toEmail), zap.String("otp", otp))
	return nil
}
