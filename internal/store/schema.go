package store

import (
	"context"
	"fmt"
)

// schema is the TPC-C warehouse/district/customer/order layout. Warehouse,
// district, customer, item and stock rows are pre-loaded; the business
// transactions only ever create orders, new_orders, order_line and history
// rows.
const schema = `
CREATE TABLE IF NOT EXISTS warehouse (
	w_id        integer PRIMARY KEY,
	w_name      varchar(10)  NOT NULL DEFAULT '',
	w_street_1  varchar(20)  NOT NULL DEFAULT '',
	w_street_2  varchar(20)  NOT NULL DEFAULT '',
	w_city      varchar(20)  NOT NULL DEFAULT '',
	w_state     char(2)      NOT NULL DEFAULT '',
	w_zip       char(9)      NOT NULL DEFAULT '',
	w_tax       numeric(4,4) NOT NULL DEFAULT 0,
	w_ytd       numeric(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS district (
	d_id        integer NOT NULL,
	d_w_id      integer NOT NULL REFERENCES warehouse (w_id),
	d_name      varchar(10)  NOT NULL DEFAULT '',
	d_street_1  varchar(20)  NOT NULL DEFAULT '',
	d_street_2  varchar(20)  NOT NULL DEFAULT '',
	d_city      varchar(20)  NOT NULL DEFAULT '',
	d_state     char(2)      NOT NULL DEFAULT '',
	d_zip       char(9)      NOT NULL DEFAULT '',
	d_tax       numeric(4,4) NOT NULL DEFAULT 0,
	d_ytd       numeric(12,2) NOT NULL DEFAULT 0,
	d_next_o_id integer NOT NULL DEFAULT 1,
	PRIMARY KEY (d_w_id, d_id)
);

CREATE TABLE IF NOT EXISTS customer (
	c_id           integer NOT NULL,
	c_d_id         integer NOT NULL,
	c_w_id         integer NOT NULL,
	c_first        varchar(16) NOT NULL DEFAULT '',
	c_middle       char(2)     NOT NULL DEFAULT '',
	c_last         varchar(16) NOT NULL DEFAULT '',
	c_street_1     varchar(20) NOT NULL DEFAULT '',
	c_street_2     varchar(20) NOT NULL DEFAULT '',
	c_city         varchar(20) NOT NULL DEFAULT '',
	c_state        char(2)     NOT NULL DEFAULT '',
	c_zip          char(9)     NOT NULL DEFAULT '',
	c_phone        char(16)    NOT NULL DEFAULT '',
	c_since        timestamp   NOT NULL DEFAULT now(),
	c_credit       char(2)     NOT NULL DEFAULT 'GC',
	c_credit_lim   bigint      NOT NULL DEFAULT 0,
	c_discount     numeric(4,4) NOT NULL DEFAULT 0,
	c_balance      numeric(12,2) NOT NULL DEFAULT 0,
	c_ytd_payment  numeric(12,2) NOT NULL DEFAULT 0,
	c_payment_cnt  integer NOT NULL DEFAULT 0,
	c_delivery_cnt integer NOT NULL DEFAULT 0,
	c_data         varchar(500) NOT NULL DEFAULT '',
	PRIMARY KEY (c_w_id, c_d_id, c_id),
	FOREIGN KEY (c_w_id, c_d_id) REFERENCES district (d_w_id, d_id)
);

CREATE INDEX IF NOT EXISTS idx_customer_name ON customer (c_w_id, c_d_id, c_last, c_first);

CREATE TABLE IF NOT EXISTS item (
	i_id    integer PRIMARY KEY,
	i_im_id integer NOT NULL DEFAULT 0,
	i_name  varchar(24) NOT NULL DEFAULT '',
	i_price numeric(5,2) NOT NULL DEFAULT 0,
	i_data  varchar(50) NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS stock (
	s_i_id       integer NOT NULL REFERENCES item (i_id),
	s_w_id       integer NOT NULL REFERENCES warehouse (w_id),
	s_quantity   integer NOT NULL DEFAULT 0,
	s_dist_01    char(24) NOT NULL DEFAULT '',
	s_dist_02    char(24) NOT NULL DEFAULT '',
	s_dist_03    char(24) NOT NULL DEFAULT '',
	s_dist_04    char(24) NOT NULL DEFAULT '',
	s_dist_05    char(24) NOT NULL DEFAULT '',
	s_dist_06    char(24) NOT NULL DEFAULT '',
	s_dist_07    char(24) NOT NULL DEFAULT '',
	s_dist_08    char(24) NOT NULL DEFAULT '',
	s_dist_09    char(24) NOT NULL DEFAULT '',
	s_dist_10    char(24) NOT NULL DEFAULT '',
	s_ytd        numeric(8,0) NOT NULL DEFAULT 0,
	s_order_cnt  integer NOT NULL DEFAULT 0,
	s_remote_cnt integer NOT NULL DEFAULT 0,
	s_data       varchar(50) NOT NULL DEFAULT '',
	PRIMARY KEY (s_w_id, s_i_id)
);

CREATE TABLE IF NOT EXISTS orders (
	o_id         integer NOT NULL,
	o_d_id       integer NOT NULL,
	o_w_id       integer NOT NULL,
	o_c_id       integer NOT NULL,
	o_entry_d    timestamp NOT NULL DEFAULT now(),
	o_carrier_id integer,
	o_ol_cnt     integer NOT NULL DEFAULT 0,
	o_all_local  integer,
	PRIMARY KEY (o_w_id, o_d_id, o_id),
	FOREIGN KEY (o_w_id, o_d_id, o_c_id) REFERENCES customer (c_w_id, c_d_id, c_id)
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (o_w_id, o_d_id, o_c_id, o_id);

CREATE TABLE IF NOT EXISTS new_orders (
	no_o_id integer NOT NULL,
	no_d_id integer NOT NULL,
	no_w_id integer NOT NULL,
	PRIMARY KEY (no_w_id, no_d_id, no_o_id),
	FOREIGN KEY (no_w_id, no_d_id, no_o_id) REFERENCES orders (o_w_id, o_d_id, o_id)
);

CREATE TABLE IF NOT EXISTS order_line (
	ol_o_id        integer NOT NULL,
	ol_d_id        integer NOT NULL,
	ol_w_id        integer NOT NULL,
	ol_number      integer NOT NULL,
	ol_i_id        integer NOT NULL REFERENCES item (i_id),
	ol_supply_w_id integer NOT NULL,
	ol_delivery_d  timestamp,
	ol_quantity    integer NOT NULL DEFAULT 0,
	ol_amount      numeric(6,2) NOT NULL DEFAULT 0,
	ol_dist_info   char(24) NOT NULL DEFAULT '',
	PRIMARY KEY (ol_w_id, ol_d_id, ol_o_id, ol_number),
	FOREIGN KEY (ol_w_id, ol_d_id, ol_o_id) REFERENCES orders (o_w_id, o_d_id, o_id)
);

CREATE TABLE IF NOT EXISTS history (
	h_c_id   integer NOT NULL,
	h_c_d_id integer NOT NULL,
	h_c_w_id integer NOT NULL,
	h_d_id   integer NOT NULL,
	h_w_id   integer NOT NULL,
	h_date   timestamp NOT NULL DEFAULT now(),
	h_amount numeric(6,2) NOT NULL DEFAULT 0,
	h_data   varchar(24) NOT NULL DEFAULT ''
);
`

// EnsureSchema creates the tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
