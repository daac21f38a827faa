package database

// Table and session queries
const (
	GetTableSQL = `
		SELECT id, number, capacity, shape, status, merged_into, created_at, updated_at
		FROM tables WHERE id = $1`

	GetTableForUpdateSQL = `
		SELECT id, number, capacity, shape, status, merged_into, created_at, updated_at
		FROM tables WHERE id = $1
		FOR UPDATE`

	ListTablesSQL = `
		SELECT id, number, capacity, shape, status, merged_into, created_at, updated_at
		FROM tables ORDER BY number`

	UpdateTableStatusSQL = `
		UPDATE tables SET status = $1, updated_at = NOW() WHERE id = $2`

	MergeMemberTableSQL = `
		UPDATE tables SET status = 'merged', merged_into = $1, updated_at = NOW()
		WHERE id = $2`

	SetTableCapacitySQL = `
		UPDATE tables SET capacity = $1, updated_at = NOW() WHERE id = $2`

	RestoreTableSQL = `
		UPDATE tables SET capacity = $1, status = $2, merged_into = NULL, updated_at = NOW()
		WHERE id = $3`

	InsertSessionSQL = `
		INSERT INTO table_sessions (table_id, guest_count, guest_name, guest_phone, staff_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, started_at`

	GetActiveSessionByTableSQL = `
		SELECT id, table_id, guest_count, guest_name, guest_phone, staff_id, notes, status, order_id, started_at, ended_at
		FROM table_sessions
		WHERE table_id = $1 AND status IN ('active', 'billing')`

	CompleteSessionSQL = `
		UPDATE table_sessions SET status = 'completed', ended_at = NOW(), order_id = NULL
		WHERE id = $1`

	TransferSessionOwnerSQL = `
		UPDATE table_sessions SET staff_id = $1
		WHERE id = $2 AND status IN ('active', 'billing')`

	SetSessionOrderSQL = `
		UPDATE table_sessions SET order_id = $1 WHERE id = $2`

	SetSessionStatusSQL = `
		UPDATE table_sessions SET status = $1 WHERE id = $2`

	InsertMergeGroupSQL = `
		INSERT INTO table_merge_groups (primary_table_id, member_capacities)
		VALUES ($1, $2)
		RETURNING id, merged_at`

	GetOpenMergeGroupSQL = `
		SELECT id, primary_table_id, member_capacities, merged_at, unmerged_at
		FROM table_merge_groups
		WHERE primary_table_id = $1 AND unmerged_at IS NULL
		FOR UPDATE`

	CloseMergeGroupSQL = `
		UPDATE table_merge_groups SET unmerged_at = NOW() WHERE id = $1`

	GetTableNumberSQL = `
		SELECT number FROM tables WHERE id = $1`
)

// Catalog queries
const (
	GetMenuItemSQL = `
		SELECT m.id, m.name, m.price, m.tax_group_id,
			   COALESCE(s.name, 'kitchen'), COALESCE(s.class, 'kitchen')
		FROM menu_items m
		LEFT JOIN stations s ON s.id = m.station_id
		WHERE m.id = $1 AND m.is_active`

	GetVariantSQL = `
		SELECT id, name, price FROM item_variants
		WHERE id = $1 AND menu_item_id = $2`

	GetTaxComponentsSQL = `
		SELECT component, rate FROM tax_group_components
		WHERE tax_group_id = $1
		ORDER BY component`

	ListStationsSQL = `
		SELECT name, class FROM stations ORDER BY name`

	GetItemTaxComponentsSQL = `
		SELECT tc.component, tc.rate
		FROM menu_items mi
		JOIN tax_group_components tc ON tc.tax_group_id = mi.tax_group_id
		WHERE mi.id = $1
		ORDER BY tc.component`

	GetCancellationReasonSQL = `
		SELECT reason, requires_approval FROM cancellation_reasons WHERE reason = $1`
)

// Order queries
const (
	NextOrderSeqSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM '([0-9]+)$') AS INTEGER)), 0) + 1
		FROM orders
		WHERE number LIKE $1`

	InsertOrderSQL = `
		INSERT INTO orders (number, type, table_id, session_id, guest_count, guest_name, guest_phone, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, name, variant_name, station, station_class,
			quantity, unit_price, tax_amount, total_price, addons, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	GetOrderSQL = `
		SELECT id, number, type, table_id, session_id, guest_count, guest_name, guest_phone,
			   status, payment_status, subtotal, tax_amount, total_amount, created_by,
			   cancel_reason, created_at, updated_at
		FROM orders WHERE id = $1`

	GetOrderForUpdateSQL = `
		SELECT id, number, type, table_id, session_id, guest_count, guest_name, guest_phone,
			   status, payment_status, subtotal, tax_amount, total_amount, created_by,
			   cancel_reason, created_at, updated_at
		FROM orders WHERE id = $1
		FOR UPDATE`

	GetOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, name, variant_name, station, station_class,
			   quantity, unit_price, tax_amount, total_price, addons, instructions,
			   status, kot_ticket_id, cancel_reason, cancelled_by, cancelled_at, created_at
		FROM order_items WHERE order_id = $1
		ORDER BY id`

	GetOrderItemSQL = `
		SELECT id, order_id, menu_item_id, name, variant_name, station, station_class,
			   quantity, unit_price, tax_amount, total_price, addons, instructions,
			   status, kot_ticket_id, cancel_reason, cancelled_by, cancelled_at, created_at
		FROM order_items WHERE id = $1
		FOR UPDATE`

	GetOrderItemOrderSQL = `
		SELECT order_id FROM order_items WHERE id = $1`

	UpdateOrderTotalsSQL = `
		UPDATE orders SET subtotal = $1, tax_amount = $2, total_amount = $3, updated_at = NOW()
		WHERE id = $4`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	UpdateOrderPaymentStatusSQL = `
		UPDATE orders SET status = $1, payment_status = $2, updated_at = NOW() WHERE id = $3`

	CancelOrderSQL = `
		UPDATE orders SET status = 'cancelled', cancel_reason = $1, updated_at = NOW()
		WHERE id = $2`

	CancelOrderItemSQL = `
		UPDATE order_items SET status = 'cancelled', cancel_reason = $1, cancelled_by = $2, cancelled_at = NOW()
		WHERE id = $3`

	CancelPendingOrderItemsSQL = `
		UPDATE order_items SET status = 'cancelled', cancel_reason = $1, cancelled_by = $2, cancelled_at = NOW()
		WHERE order_id = $3 AND status NOT IN ('served', 'cancelled')`

	PendingOrderItemsForUpdateSQL = `
		SELECT id, order_id, menu_item_id, name, variant_name, station, station_class,
			   quantity, unit_price, tax_amount, total_price, addons, instructions,
			   status, kot_ticket_id, cancel_reason, cancelled_by, cancelled_at, created_at
		FROM order_items
		WHERE order_id = $1 AND status = 'pending'
		ORDER BY id
		FOR UPDATE`

	MarkItemsSentSQL = `
		UPDATE order_items SET status = 'sent_to_kitchen', kot_ticket_id = $1
		WHERE id = ANY($2)`

	SetOrderItemStatusSQL = `
		UPDATE order_items SET status = $1
		WHERE id = $2 AND status <> 'cancelled'`

	SetOrderItemsStatusByTicketSQL = `
		UPDATE order_items SET status = $1
		WHERE kot_ticket_id = $2 AND status NOT IN ('cancelled', 'ready', 'served')`

	ServeOrderItemsByTicketSQL = `
		UPDATE order_items SET status = 'served'
		WHERE kot_ticket_id = $1 AND status <> 'cancelled'`

	ResetOrderItemsByTicketSQL = `
		UPDATE order_items SET status = 'pending', kot_ticket_id = NULL
		WHERE kot_ticket_id = $1 AND status NOT IN ('cancelled', 'served')`

	CountUnservedOrderItemsSQL = `
		SELECT COUNT(*) FROM order_items
		WHERE order_id = $1 AND status NOT IN ('served', 'cancelled')`

	CountPaymentsByOrderSQL = `
		SELECT COUNT(*) FROM payments WHERE order_id = $1 AND status = 'completed'`
)

// Ticket queries
const (
	NextTicketSeqSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM '([0-9]+)$') AS INTEGER)), 0) + 1
		FROM kot_tickets
		WHERE number LIKE $1`

	InsertTicketSQL = `
		INSERT INTO kot_tickets (number, order_id, station, station_class, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	InsertKotItemSQL = `
		INSERT INTO kot_items (ticket_id, order_item_id, name, variant_name, quantity, addons, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	GetTicketSQL = `
		SELECT id, number, order_id, station, station_class, status, priority,
			   accepted_by, accepted_at, preparing_by, preparing_at, ready_by, ready_at,
			   served_by, served_at, cancelled_by, cancel_reason, cancelled_at,
			   reprint_count, created_at
		FROM kot_tickets WHERE id = $1
		FOR UPDATE`

	GetTicketHeaderSQL = `
		SELECT number, station, station_class, status
		FROM kot_tickets WHERE id = $1
		FOR UPDATE`

	GetTicketItemsSQL = `
		SELECT id, ticket_id, order_item_id, name, variant_name, quantity, addons, instructions,
			   status, ready_at, cancelled_at
		FROM kot_items WHERE ticket_id = $1
		ORDER BY id`

	GetKotItemSQL = `
		SELECT id, ticket_id, order_item_id, name, variant_name, quantity, addons, instructions,
			   status, ready_at, cancelled_at
		FROM kot_items WHERE id = $1
		FOR UPDATE`

	NonTerminalTicketsByOrderSQL = `
		SELECT id, number, order_id, station, station_class, status, priority,
			   accepted_by, accepted_at, preparing_by, preparing_at, ready_by, ready_at,
			   served_by, served_at, cancelled_by, cancel_reason, cancelled_at,
			   reprint_count, created_at
		FROM kot_tickets
		WHERE order_id = $1 AND status NOT IN ('served', 'cancelled')
		ORDER BY id
		FOR UPDATE`

	AcceptTicketSQL = `
		UPDATE kot_tickets SET status = 'accepted', accepted_by = $1, accepted_at = NOW()
		WHERE id = $2`

	PrepareTicketSQL = `
		UPDATE kot_tickets SET status = 'preparing', preparing_by = $1, preparing_at = NOW()
		WHERE id = $2`

	ReadyTicketSQL = `
		UPDATE kot_tickets SET status = 'ready', ready_by = $1, ready_at = NOW()
		WHERE id = $2`

	ServeTicketSQL = `
		UPDATE kot_tickets SET status = 'served', served_by = $1, served_at = NOW()
		WHERE id = $2`

	CancelTicketSQL = `
		UPDATE kot_tickets SET status = 'cancelled', cancelled_by = $1, cancel_reason = $2, cancelled_at = NOW()
		WHERE id = $3`

	SetTicketItemsStatusSQL = `
		UPDATE kot_items SET status = $1
		WHERE ticket_id = $2 AND status NOT IN ('cancelled', 'ready', 'served')`

	ServeTicketItemsSQL = `
		UPDATE kot_items SET status = 'served'
		WHERE ticket_id = $1 AND status <> 'cancelled'`

	CancelTicketItemsSQL = `
		UPDATE kot_items SET status = 'cancelled', cancelled_at = NOW()
		WHERE ticket_id = $1 AND status NOT IN ('cancelled', 'served')`

	ReadyKotItemSQL = `
		UPDATE kot_items SET status = 'ready', ready_at = NOW() WHERE id = $1`

	CancelKotItemByOrderItemSQL = `
		UPDATE kot_items SET status = 'cancelled', cancelled_at = NOW()
		WHERE order_item_id = $1 AND status NOT IN ('cancelled', 'served')
		RETURNING ticket_id`

	CountUnreadyTicketItemsSQL = `
		SELECT COUNT(*) FROM kot_items
		WHERE ticket_id = $1 AND status NOT IN ('ready', 'served', 'cancelled')`

	CountLiveTicketItemsSQL = `
		SELECT COUNT(*) FROM kot_items
		WHERE ticket_id = $1 AND status <> 'cancelled'`

	IncrementReprintSQL = `
		UPDATE kot_tickets SET reprint_count = reprint_count + 1
		WHERE id = $1
		RETURNING reprint_count`
)

// Invoice queries
const (
	NextInvoiceSeqSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM '([0-9]+)$') AS INTEGER)), 0) + 1
		FROM invoices
		WHERE number LIKE $1`

	GetActiveInvoiceByOrderSQL = `
		SELECT id, number, order_id, status, subtotal, discount_amount, taxable_amount,
			   cgst_amount, sgst_amount, igst_amount, vat_amount, cess_amount,
			   total_tax, service_charge, round_off, grand_total, payment_status,
			   customer_name, customer_phone, generated_by, duplicate_count,
			   cancel_reason, cancelled_at, created_at
		FROM invoices
		WHERE order_id = $1 AND status <> 'cancelled'`

	InsertInvoiceSQL = `
		INSERT INTO invoices (number, order_id, subtotal, discount_amount, taxable_amount,
			cgst_amount, sgst_amount, igst_amount, vat_amount, cess_amount,
			total_tax, service_charge, round_off, grand_total,
			customer_name, customer_phone, generated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	InsertInvoiceItemSQL = `
		INSERT INTO invoice_items (invoice_id, name, variant_name, quantity, unit_price, tax_amount, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	InsertInvoiceDiscountSQL = `
		INSERT INTO invoice_discounts (invoice_id, label, kind, value, pre_tax, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	GetInvoiceSQL = `
		SELECT id, number, order_id, status, subtotal, discount_amount, taxable_amount,
			   cgst_amount, sgst_amount, igst_amount, vat_amount, cess_amount,
			   total_tax, service_charge, round_off, grand_total, payment_status,
			   customer_name, customer_phone, generated_by, duplicate_count,
			   cancel_reason, cancelled_at, created_at
		FROM invoices WHERE id = $1`

	GetInvoiceForUpdateSQL = `
		SELECT id, number, order_id, status, subtotal, discount_amount, taxable_amount,
			   cgst_amount, sgst_amount, igst_amount, vat_amount, cess_amount,
			   total_tax, service_charge, round_off, grand_total, payment_status,
			   customer_name, customer_phone, generated_by, duplicate_count,
			   cancel_reason, cancelled_at, created_at
		FROM invoices WHERE id = $1
		FOR UPDATE`

	GetInvoiceItemsSQL = `
		SELECT id, invoice_id, name, variant_name, quantity, unit_price, tax_amount, total_price
		FROM invoice_items WHERE invoice_id = $1
		ORDER BY id`

	GetInvoiceDiscountsSQL = `
		SELECT id, invoice_id, label, kind, value, pre_tax, amount
		FROM invoice_discounts WHERE invoice_id = $1
		ORDER BY id`

	CancelInvoiceSQL = `
		UPDATE invoices SET status = 'cancelled', cancel_reason = $1, cancelled_at = NOW()
		WHERE id = $2`

	IncrementDuplicateSQL = `
		UPDATE invoices SET duplicate_count = duplicate_count + 1
		WHERE id = $1
		RETURNING duplicate_count`

	UpdateInvoicePaymentStatusSQL = `
		UPDATE invoices SET payment_status = $1 WHERE id = $2`

	SumCompletedPaymentsSQL = `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE invoice_id = $1 AND status = 'completed'`
)

// Payment queries
const (
	NextPaymentSeqSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM '([0-9]+)$') AS INTEGER)), 0) + 1
		FROM payments
		WHERE number LIKE $1`

	InsertPaymentSQL = `
		INSERT INTO payments (number, invoice_id, order_id, mode, amount, tip_amount, total_amount,
			card_last_four, upi_transaction_id, received_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	InsertSplitPaymentSQL = `
		INSERT INTO split_payments (payment_id, position, mode, amount, card_last_four, upi_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
)

// Print job queries
const (
	EnqueuePrintJobSQL = `
		INSERT INTO print_jobs (job_type, station, content, reference_no)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	ClaimPrintJobSQL = `
		UPDATE print_jobs SET status = 'claimed', claimed_at = NOW(), attempts = attempts + 1
		WHERE id = (
			SELECT id FROM print_jobs
			WHERE status = 'pending'
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, job_type, station, content, reference_no, attempts`

	CompletePrintJobSQL = `
		UPDATE print_jobs SET status = 'done', completed_at = NOW() WHERE id = $1`

	FailPrintJobSQL = `
		UPDATE print_jobs SET status = CASE WHEN attempts >= $1 THEN 'failed' ELSE 'pending' END,
			last_error = $2
		WHERE id = $3`
)
